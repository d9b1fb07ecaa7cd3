package routes

import (
	"net/http"

	"blogport/app/controllers"
	"blogport/app/middleware"
	"blogport/app/repositories"
	"blogport/app/services"

	"github.com/gorilla/mux"
)

// SetupRoutes builds the read-only preview router over imported content.
// Unmatched GET requests are looked up in resolver and redirected to the
// post imported from that path.
func SetupRoutes(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, resolver controllers.PathResolver, siteURL string) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	postController := controllers.NewPostController(services.NewPostService(postRepo, commentRepo, siteURL))
	commentController := controllers.NewCommentController(services.NewCommentService(commentRepo, postRepo))
	redirectController := controllers.NewRedirectController(resolver)

	// API routes with JSON content type. They are registered on the root
	// router so a method mismatch answers 405 instead of falling through
	// to the permalink redirects.
	api := func(h http.HandlerFunc) http.Handler {
		return middleware.ContentTypeJSON(h)
	}
	router.Handle("/api/posts", api(postController.Index)).Methods("GET")
	router.Handle("/api/posts/{id:[0-9]+}", api(postController.Show)).Methods("GET")
	router.Handle("/api/posts/{id:[0-9]+}/comments", api(commentController.Index)).Methods("GET")
	router.Handle("/api/comments/{id:[0-9]+}", api(commentController.Show)).Methods("GET")

	// Canonical post URLs
	router.HandleFunc("/p/{id36:[0-9a-z]+}/", postController.ShowCanonical).Methods("GET")
	router.HandleFunc("/p/{id36:[0-9a-z]+}/{slug}/", postController.ShowCanonical).Methods("GET")

	// Router middleware only wraps matched routes
	router.NotFoundHandler = middleware.Logger(middleware.Recoverer(http.HandlerFunc(redirectController.NotFound)))
	router.MethodNotAllowedHandler = middleware.Logger(middleware.Recoverer(http.HandlerFunc(controllers.MethodNotAllowed)))

	return router
}
