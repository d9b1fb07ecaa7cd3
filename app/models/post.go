package models

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MoreMarker separates a post's teaser from the rest of its body.
const MoreMarker = `<a id="more"></a>`

const maxSlugLength = 50

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}

// Teaser returns the part of the body before MoreMarker.
func (p *Post) Teaser() string {
	teaser, _, _ := strings.Cut(p.Content, MoreMarker)
	return teaser
}

// Slug turns the title into the path segment used in permalinks.
func (p *Post) Slug() string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(p.Title), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "_")
	}
	if slug == "" {
		return "post"
	}
	return slug
}

// ID36 is the post id in base 36, as used in permalinks.
func (p *Post) ID36() string {
	return strconv.FormatInt(int64(p.ID), 36)
}

// Permalink returns the site-relative path of the post.
func (p *Post) Permalink() string {
	return "/p/" + p.ID36() + "/" + p.Slug() + "/"
}

// CanonicalURL returns the absolute URL of the post under siteURL.
func (p *Post) CanonicalURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + p.Permalink()
}

// ParseID36 is the inverse of ID36.
func ParseID36(s string) (int, error) {
	id, err := strconv.ParseInt(s, 36, 0)
	if err != nil {
		return 0, err
	}
	return int(id), nil
}
