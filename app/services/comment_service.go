package services

import (
	"fmt"

	"blogport/app/models"
	"blogport/app/repositories"
)

// CommentService exposes imported comments read-only
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}

	return s.commentRepo.ListByPost(postID)
}
