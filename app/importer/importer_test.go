package importer

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"blogport/app/models"
	"blogport/app/repositories"
	"blogport/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleExport() []models.ExternalPost {
	reply := sampleComment("11", "10", "Jane Doe", "Thanks!")
	reply.AuthorEmail = "j@x.com"
	first := samplePost("Post One", "http://old.example.com/2010/post-one.html",
		sampleComment("10", "", "Alice", `Great post, see http://old.example.com/2010/post-two.html`),
		reply,
		sampleComment("12", "", "Feed "+DefaultSyndicationMarker, "syndicated"),
	)
	first.Categories = []string{"Meta"}

	second := samplePost("Post Two", "http://old.example.com/2010/post-two.html",
		sampleComment("1", "", "Bob", "Hello"),
	)
	second.Description = `<p>Follow-up to <a href="http://old.example.com/2010/post-one.html">post one</a> ` +
		`and <a href="http://elsewhere.example.com/">elsewhere</a>.</p>`
	second.TextMore = "<p>More</p>"
	second.DateCreated = "07/04/2010 10:15:00 PM"
	return []models.ExternalPost{first, second}
}

type snapshot struct {
	posts    []models.Post
	comments []models.Comment
}

// takeSnapshot copies a collection with links to imported posts replaced by
// their old permalinks, since a re-import assigns new ids.
func takeSnapshot(t *testing.T, posts repositories.PostRepository, comments repositories.CommentRepository, collection string) snapshot {
	t.Helper()
	var s snapshot
	list, err := posts.ListByCollection(collection)
	require.NoError(t, err)

	var pairs []string
	for _, p := range list {
		pairs = append(pairs, p.CanonicalURL(testSiteURL), "<"+p.ObPermalink+">")
	}
	links := strings.NewReplacer(pairs...)

	for _, p := range list {
		p.Content = links.Replace(p.Content)
		s.posts = append(s.posts, *p)
		cs, err := comments.ListByPost(p.ID)
		require.NoError(t, err)
		for _, c := range cs {
			c.Body = links.Replace(c.Body)
			s.comments = append(s.comments, *c)
		}
	}
	return s
}

func assertSameContent(t *testing.T, a, b snapshot) {
	t.Helper()
	require.Len(t, b.posts, len(a.posts))
	require.Len(t, b.comments, len(a.comments))
	for i := range a.posts {
		assert.Equal(t, a.posts[i].Title, b.posts[i].Title)
		assert.Equal(t, a.posts[i].Content, b.posts[i].Content)
		assert.Equal(t, a.posts[i].AuthorID, b.posts[i].AuthorID)
		assert.Equal(t, a.posts[i].Tags, b.posts[i].Tags)
		assert.True(t, a.posts[i].CreatedAt.Equal(b.posts[i].CreatedAt))
		assert.Equal(t, a.posts[i].ObPermalink, b.posts[i].ObPermalink)
	}
	for i := range a.comments {
		assert.Equal(t, a.comments[i].Body, b.comments[i].Body)
		assert.Equal(t, a.comments[i].AuthorID, b.comments[i].AuthorID)
		assert.Equal(t, a.comments[i].ParentID == 0, b.comments[i].ParentID == 0)
		assert.True(t, a.comments[i].CreatedAt.Equal(b.comments[i].CreatedAt))
	}
}

func TestImport(t *testing.T) {
	im, store := newMockImporter(t)

	var table bytes.Buffer
	result, err := im.Import("main", sampleExport(), &table)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PostsCreated)
	assert.Equal(t, 3, result.CommentsCreated)
	assert.Equal(t, 1, result.CommentsSkipped)
	assert.Equal(t, 3, result.AccountsCreated)
	assert.Equal(t, 2, result.RewriteEntries)
	assert.Equal(t, 0, result.RewriteSkipped)
	assert.Equal(t, 1, result.PostsRewritten)
	assert.Equal(t, 1, result.CommentsRewritten)

	assert.Equal(t,
		"/2010/post-one.html https://new.example.com/p/1/post_one/\n"+
			"/2010/post-two.html https://new.example.com/p/2/post_two/\n",
		table.String())

	two, err := store.Posts.FindByPermalink("http://old.example.com/2010/post-two.html")
	require.NoError(t, err)
	assert.Contains(t, two.Content, `<a href="https://new.example.com/p/1/post_one/">post one</a>`)
	assert.Contains(t, two.Content, `<a href="http://elsewhere.example.com/">elsewhere</a>`)
	assert.Contains(t, two.Content, models.MoreMarker+"<p>More</p>")

	comments, err := store.Comments.ListByPost(1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Great post, see https://new.example.com/p/2/post_two/", comments[0].Body)
	assert.Equal(t, comments[0].ID, comments[1].ParentID)

	// Jane Doe wrote a post and a comment under one account.
	assert.Equal(t, two.AuthorID, comments[1].AuthorID)
}

func TestImportIsIdempotent(t *testing.T) {
	im, store := newMockImporter(t)

	_, err := im.Import("main", sampleExport(), nil)
	require.NoError(t, err)
	first := takeSnapshot(t, store.Posts, store.Comments, "main")
	accounts := len(store.Accounts.All())

	result, err := im.Import("main", sampleExport(), io.Discard)
	require.NoError(t, err)
	second := takeSnapshot(t, store.Posts, store.Comments, "main")

	assertSameContent(t, first, second)
	assert.Len(t, store.Accounts.All(), accounts)
	assert.Equal(t, 2, result.PostsDeleted)
	assert.Equal(t, 3, result.CommentsDeleted)
	assert.Equal(t, 0, result.AccountsCreated)
}

func TestImportIntoBadger(t *testing.T) {
	store, err := repositories.Open(t.TempDir(), repositories.Options{})
	require.NoError(t, err)
	defer store.Close()
	im := New(store.Accounts, store.Posts, store.Comments, testOptions(t))

	var firstTable, secondTable bytes.Buffer
	_, err = im.Import("main", sampleExport(), &firstTable)
	require.NoError(t, err)
	first := takeSnapshot(t, store.Posts, store.Comments, "main")

	_, err = im.Import("main", sampleExport(), &secondTable)
	require.NoError(t, err)
	second := takeSnapshot(t, store.Posts, store.Comments, "main")

	assertSameContent(t, first, second)
	assert.Equal(t, firstTable.Len() > 0, secondTable.Len() > 0)
	assert.Equal(t, 2, strings.Count(secondTable.String(), "\n"))
	assert.Contains(t, second.posts[1].Content, "<http://old.example.com/2010/post-one.html>")

	one, err := store.Posts.FindByPermalink("http://old.example.com/2010/post-one.html")
	require.NoError(t, err)
	two, err := store.Posts.FindByPermalink("http://old.example.com/2010/post-two.html")
	require.NoError(t, err)
	assert.Contains(t, two.Content, one.CanonicalURL(testSiteURL))
	assert.Contains(t, secondTable.String(), "/2010/post-one.html "+one.CanonicalURL(testSiteURL)+"\n")
}

func TestImportLeavesOtherCollections(t *testing.T) {
	im, store := newMockImporter(t)
	author := &models.Account{Name: "local"}
	require.NoError(t, store.Accounts.Create(author))
	keep := &models.Post{Title: "Keep", AuthorID: author.ID, Collection: "other"}
	require.NoError(t, store.Posts.Create(keep))
	drop := &models.Post{Title: "Drop", AuthorID: author.ID, Collection: "main"}
	require.NoError(t, store.Posts.Create(drop))
	require.NoError(t, store.Comments.Create(&models.Comment{PostID: drop.ID, AuthorID: author.ID}))

	result, err := im.Import("main", sampleExport(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PostsDeleted)
	assert.Equal(t, 1, result.CommentsDeleted)

	_, err = store.Posts.GetByID(keep.ID)
	assert.NoError(t, err)
	_, err = store.Posts.GetByID(drop.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestImportValidatesBeforeClearing(t *testing.T) {
	im, store := newMockImporter(t)
	author := &models.Account{Name: "local"}
	require.NoError(t, store.Accounts.Create(author))
	existing := &models.Post{Title: "Existing", AuthorID: author.ID, Collection: "main"}
	require.NoError(t, store.Posts.Create(existing))

	records := sampleExport()
	records[1].Comments[0].DateCreated = "not a date"

	_, err := im.Import("main", records, nil)
	assert.Error(t, err)

	_, err = store.Posts.GetByID(existing.ID)
	assert.NoError(t, err)

	records = sampleExport()
	records[0].Permalink = ""
	_, err = im.Import("main", records, nil)
	assert.Error(t, err)

	_, err = im.Import("", sampleExport(), nil)
	assert.Error(t, err)
}

func TestImportAbortsOnExhaustedAccounts(t *testing.T) {
	store := mock.NewStore()
	opts := testOptions(t)
	opts.MaxAccountAttempts = 2
	im := New(store.Accounts, store.Posts, store.Comments, opts)
	for _, name := range []string{"Jane_Doe", "Jane_Doe2"} {
		require.NoError(t, store.Accounts.Create(&models.Account{Name: name, Email: "other@x.com"}))
	}

	_, err := im.Import("main", sampleExport(), nil)

	var recordErr *RecordImportError
	require.True(t, errors.As(err, &recordErr))
	assert.Equal(t, "Post One", recordErr.Title)
	var exhausted *ExhaustedRetriesError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 2, exhausted.Attempts)
}

// failingPosts is a PostRepository whose behaviour each test scripts.
type failingPosts struct {
	testifymock.Mock
}

func (m *failingPosts) Create(post *models.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *failingPosts) GetByID(id int) (*models.Post, error) {
	args := m.Called(id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *failingPosts) List(limit, offset int) ([]*models.Post, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *failingPosts) Update(post *models.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *failingPosts) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *failingPosts) FindByPermalink(permalink string) (*models.Post, error) {
	args := m.Called(permalink)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *failingPosts) ListImported() ([]*models.Post, error) {
	args := m.Called()
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *failingPosts) ListByCollection(collection string) ([]*models.Post, error) {
	args := m.Called(collection)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func TestImportAbortsOnStoreFailure(t *testing.T) {
	diskFull := errors.New("disk full")
	posts := new(failingPosts)
	posts.On("ListByCollection", "main").Return([]*models.Post{}, nil)
	posts.On("FindByPermalink", testifymock.Anything).Return(nil, repositories.ErrNotFound)
	posts.On("Create", testifymock.AnythingOfType("*models.Post")).Return(diskFull).Once()

	var logs bytes.Buffer
	store := mock.NewStore()
	opts := testOptions(t)
	opts.Logger = log.New(&logs, "", 0)
	im := New(store.Accounts, posts, store.Comments, opts)

	result, err := im.Import("main", sampleExport(), nil)

	var recordErr *RecordImportError
	require.True(t, errors.As(err, &recordErr))
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, "Post One", recordErr.Title)
	assert.Equal(t, "http://old.example.com/2010/post-one.html", recordErr.Record.Permalink)
	assert.Equal(t, 0, result.PostsCreated)
	assert.Contains(t, logs.String(), "Unable to create post")
	assert.Contains(t, logs.String(), "post-one.html")

	posts.AssertExpectations(t)
	posts.AssertNotCalled(t, "ListImported")
}
