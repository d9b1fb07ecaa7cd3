package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Account is a user of the target platform.
type Account struct {
	ID           int       `json:"id" validate:"gte=0"`
	Name         string    `json:"name" validate:"required,max=100"`
	Email        string    `json:"email" validate:"max=255"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at" validate:"required"`

	// ObAccountName is the display name the account was imported under.
	ObAccountName string `json:"ob_account_name,omitempty"`
}

// Post represents a blog post with comments.
type Post struct {
	ID          int        `json:"id" validate:"gte=0"`
	Title       string     `json:"title" validate:"required,max=300"`
	Content     string     `json:"content"`
	AuthorID    int        `json:"author_id" validate:"gt=0"`
	Collection  string     `json:"collection" validate:"required,max=100"`
	IP          string     `json:"ip,omitempty" validate:"omitempty,ip"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at" validate:"required"`
	Blessed     bool       `json:"blessed"`
	CommentSort string     `json:"comment_sort,omitempty" validate:"omitempty,oneof=old new top"`
	Comments    []*Comment `json:"comments,omitempty" validate:"-"`

	// ObPermalink is the permalink the post had on the exporting blog.
	ObPermalink string `json:"ob_permalink,omitempty"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id" validate:"gte=0"`
	PostID    int       `json:"post_id" validate:"gt=0"`
	ParentID  int       `json:"parent_id,omitempty" validate:"gte=0"`
	AuthorID  int       `json:"author_id" validate:"gt=0"`
	Body      string    `json:"body"`
	IP        string    `json:"ip,omitempty" validate:"omitempty,ip"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
	IsHTML    bool      `json:"is_html"`
	Post      *Post     `json:"-" validate:"-"`

	// ObImported marks comments written by the importer.
	ObImported bool `json:"ob_imported,omitempty"`
}
