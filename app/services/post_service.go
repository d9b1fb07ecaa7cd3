package services

import (
	"errors"
	"fmt"
	"strings"

	"blogport/app/models"
	"blogport/app/repositories"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// ErrWrongSlug is returned when a canonical URL names an existing post
// under a slug that is no longer its own.
var ErrWrongSlug = errors.New("slug does not match post")

// PostSummary is a post as shown in listings.
type PostSummary struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Permalink    string `json:"permalink"`
	CanonicalURL string `json:"canonical_url"`
	Teaser       string `json:"teaser"`
	Comments     int    `json:"comments"`
	ObPermalink  string `json:"ob_permalink,omitempty"`
}

// PostService exposes imported posts read-only
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	siteURL     string
	converter   *md.Converter
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, siteURL string) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		siteURL:     siteURL,
		converter:   md.NewConverter("", true, nil),
	}
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	post.Comments = comments

	return post, nil
}

// GetByCanonical resolves the /p/<id36>/<slug>/ form of a post URL. An
// empty slug matches any post.
func (s *PostService) GetByCanonical(id36, slug string) (*models.Post, error) {
	id, err := models.ParseID36(id36)
	if err != nil || id <= 0 {
		return nil, repositories.ErrNotFound
	}

	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}
	if slug != "" && slug != post.Slug() {
		return post, ErrWrongSlug
	}
	return post, nil
}

// ListPosts retrieves a paginated list of post summaries
func (s *PostService) ListPosts(page, perPage int) ([]*PostSummary, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	offset := (page - 1) * perPage
	posts, err := s.postRepo.List(perPage, offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]*PostSummary, 0, len(posts))
	for _, post := range posts {
		comments, err := s.commentRepo.ListByPost(post.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get comments for post %d: %w", post.ID, err)
		}
		teaser, err := s.Teaser(post)
		if err != nil {
			return nil, fmt.Errorf("failed to convert teaser of post %d: %w", post.ID, err)
		}
		summaries = append(summaries, &PostSummary{
			ID:           post.ID,
			Title:        post.Title,
			Permalink:    post.Permalink(),
			CanonicalURL: post.CanonicalURL(s.siteURL),
			Teaser:       teaser,
			Comments:     len(comments),
			ObPermalink:  post.ObPermalink,
		})
	}

	return summaries, nil
}

// Teaser renders the part of the post before the more marker as markdown.
func (s *PostService) Teaser(post *models.Post) (string, error) {
	markdown, err := s.converter.ConvertString(post.Teaser())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}
