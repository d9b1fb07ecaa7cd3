package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"blogport/app/repositories"
	"blogport/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// Index handles listing the comments of a post
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, err := cc.commentService.ListPostComments(postID)
	if errors.Is(err, repositories.ErrNotFound) {
		sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, r, "Failed to fetch comments: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sendJSON(w, comments)
}

// Show handles displaying a single comment
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	comment, err := cc.commentService.GetComment(id)
	if errors.Is(err, repositories.ErrNotFound) {
		sendError(w, r, "Comment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, r, "Failed to fetch comment: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sendJSON(w, comment)
}
