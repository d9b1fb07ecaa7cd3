package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"blogport/app/repositories"
	"blogport/app/services"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for imported posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index handles listing posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	posts, err := pc.postService.ListPosts(page, perPage)
	if err != nil {
		sendError(w, r, "Failed to fetch posts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sendJSON(w, map[string]interface{}{
		"posts": posts,
		"page":  page,
	})
}

// Show handles displaying a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.GetPost(id)
	if errors.Is(err, repositories.ErrNotFound) {
		sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, r, "Failed to fetch post: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sendJSON(w, post)
}

// ShowCanonical serves a post at its canonical /p/<id36>/<slug>/ URL.
// Requests naming a stale or missing slug are redirected to the current one.
func (pc *PostController) ShowCanonical(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	post, err := pc.postService.GetByCanonical(vars["id36"], vars["slug"])
	switch {
	case errors.Is(err, services.ErrWrongSlug):
		http.Redirect(w, r, post.Permalink(), http.StatusMovedPermanently)
		return
	case errors.Is(err, repositories.ErrNotFound):
		sendError(w, r, "Post not found", http.StatusNotFound)
		return
	case err != nil:
		sendError(w, r, "Failed to fetch post: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if vars["slug"] == "" {
		http.Redirect(w, r, post.Permalink(), http.StatusMovedPermanently)
		return
	}
	sendJSON(w, post)
}
