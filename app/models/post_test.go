package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name: "valid post",
			post: &Post{
				ID:         1,
				Title:      "Valid Title",
				Content:    "Body",
				AuthorID:   1,
				Collection: "main",
				IP:         "127.0.0.1",
				CreatedAt:  time.Now(),
			},
			wantErr: false,
		},
		{
			name: "missing title",
			post: &Post{
				ID:         1,
				AuthorID:   1,
				Collection: "main",
				CreatedAt:  time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing author",
			post: &Post{
				ID:         1,
				Title:      "Valid Title",
				Collection: "main",
				CreatedAt:  time.Now(),
			},
			wantErr: true,
		},
		{
			name: "bad comment sort",
			post: &Post{
				ID:          1,
				Title:       "Valid Title",
				AuthorID:    1,
				Collection:  "main",
				CommentSort: "random",
				CreatedAt:   time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			post: &Post{
				ID:         1,
				Title:      "Valid Title",
				AuthorID:   1,
				Collection: "main",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{ID: 1, Title: "Test Post"}

	assert.True(t, post.CreatedAt.IsZero())
	post.BeforeCreate()
	assert.False(t, post.CreatedAt.IsZero())
}

func TestPostAddComment(t *testing.T) {
	post := &Post{ID: 7, Title: "Test Post"}

	t.Run("add comment", func(t *testing.T) {
		comment := &Comment{ID: 1, Body: "Test Comment"}
		assert.NoError(t, post.AddComment(comment))
		assert.Len(t, post.Comments, 1)
		assert.Equal(t, 7, comment.PostID)
	})

	t.Run("add nil comment", func(t *testing.T) {
		assert.Error(t, post.AddComment(nil))
	})
}

func TestPostSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello_world"},
		{"Why <i>Not</i>?", "why_i_not_i"},
		{"  --Trim me--  ", "trim_me"},
		{"", "post"},
		{"!!!", "post"},
		{"a very long title that keeps going well past the fifty character limit", "a_very_long_title_that_keeps_going_well_past_the_f"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p := &Post{Title: tt.title}
			got := p.Slug()
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxSlugLength)
		})
	}
}

func TestPostPermalink(t *testing.T) {
	p := &Post{ID: 1295, Title: "Post One"}

	assert.Equal(t, "zz", p.ID36())
	assert.Equal(t, "/p/zz/post_one/", p.Permalink())
	assert.Equal(t, "https://new.example.com/p/zz/post_one/", p.CanonicalURL("https://new.example.com/"))

	id, err := ParseID36("zz")
	assert.NoError(t, err)
	assert.Equal(t, 1295, id)

	_, err = ParseID36("not-base36")
	assert.Error(t, err)
}

func TestPostTeaser(t *testing.T) {
	p := &Post{Content: "<p>intro</p>" + MoreMarker + "<p>rest</p>"}
	assert.Equal(t, "<p>intro</p>", p.Teaser())

	p = &Post{Content: "<p>short</p>"}
	assert.Equal(t, "<p>short</p>", p.Teaser())
}
