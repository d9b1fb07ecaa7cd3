package repositories

import (
	"testing"
	"time"

	"blogport/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Posts
	author := newTestAccount(t, store, "author", "author@example.com")

	t.Run("create and get post", func(t *testing.T) {
		post := newTestPost(t, store, author.ID, "Test Post", "http://old.example.com/test.html")
		assert.Greater(t, post.ID, 0)

		retrieved, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Title, retrieved.Title)
		assert.Equal(t, post.Content, retrieved.Content)
		assert.Equal(t, post.ObPermalink, retrieved.ObPermalink)
		assert.True(t, post.CreatedAt.Equal(retrieved.CreatedAt))
	})

	t.Run("create rejects invalid post", func(t *testing.T) {
		err := repo.Create(&models.Post{Title: "No author", Collection: "main", CreatedAt: time.Now()})
		assert.Error(t, err)
	})

	t.Run("create rejects duplicate permalink", func(t *testing.T) {
		newTestPost(t, store, author.ID, "Original", "http://old.example.com/dup.html")

		dup := &models.Post{
			Title:       "Duplicate",
			AuthorID:    author.ID,
			Collection:  "main",
			ObPermalink: "http://old.example.com/dup.html",
		}
		assert.ErrorIs(t, repo.Create(dup), ErrDuplicatePermalink)
	})

	t.Run("update post", func(t *testing.T) {
		post := newTestPost(t, store, author.ID, "Original Title", "http://old.example.com/orig.html")

		post.Title = "Updated Title"
		post.Content = "Updated content"
		require.NoError(t, repo.Update(post))

		updated, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.Equal(t, "Updated content", updated.Content)
	})

	t.Run("update moves permalink index", func(t *testing.T) {
		post := newTestPost(t, store, author.ID, "Moving", "http://old.example.com/before.html")

		post.ObPermalink = "http://old.example.com/after.html"
		require.NoError(t, repo.Update(post))

		_, err := repo.FindByPermalink("http://old.example.com/before.html")
		assert.ErrorIs(t, err, ErrNotFound)
		found, err := repo.FindByPermalink("http://old.example.com/after.html")
		require.NoError(t, err)
		assert.Equal(t, post.ID, found.ID)
	})

	t.Run("update missing post", func(t *testing.T) {
		post := &models.Post{ID: 9999, Title: "ghost", AuthorID: author.ID, Collection: "main", CreatedAt: time.Now()}
		assert.ErrorIs(t, repo.Update(post), ErrNotFound)
	})

	t.Run("delete post removes comments and index", func(t *testing.T) {
		post := newTestPost(t, store, author.ID, "Post to Delete", "http://old.example.com/delete.html")
		comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: "bye"}
		require.NoError(t, store.Comments.Create(comment))

		require.NoError(t, repo.Delete(post.ID))

		_, err := repo.GetByID(post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Comments.GetByID(comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.FindByPermalink("http://old.example.com/delete.html")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, repo.Delete(post.ID), ErrNotFound)
	})
}

func TestPostRepositoryListing(t *testing.T) {
	store := newTestStore(t)
	repo := store.Posts
	author := newTestAccount(t, store, "author", "")

	var ids []int
	for i := 0; i < 12; i++ {
		post := newTestPost(t, store, author.ID, "List Test Post", "")
		ids = append(ids, post.ID)
	}
	imported := newTestPost(t, store, author.ID, "Imported", "http://old.example.com/imported.html")
	other := &models.Post{Title: "Elsewhere", AuthorID: author.ID, Collection: "other"}
	require.NoError(t, repo.Create(other))

	t.Run("list orders by id across key width", func(t *testing.T) {
		posts, err := repo.List(20, 0)
		require.NoError(t, err)
		require.Len(t, posts, 14)
		for i := 1; i < len(posts); i++ {
			assert.Less(t, posts[i-1].ID, posts[i].ID)
		}
	})

	t.Run("list paginates", func(t *testing.T) {
		posts, err := repo.List(5, 10)
		require.NoError(t, err)
		require.Len(t, posts, 4)
		assert.Equal(t, ids[10], posts[0].ID)

		posts, err = repo.List(5, 100)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("list imported", func(t *testing.T) {
		posts, err := repo.ListImported()
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, imported.ID, posts[0].ID)
	})

	t.Run("list by collection", func(t *testing.T) {
		posts, err := repo.ListByCollection("other")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, other.ID, posts[0].ID)

		posts, err = repo.ListByCollection("main")
		require.NoError(t, err)
		assert.Len(t, posts, 13)
	})
}
