package controllers

import (
	"net/http"
)

// PathResolver maps an old permalink path to the canonical URL of the post
// imported from it.
type PathResolver interface {
	LookupPath(path string) (string, bool)
}

// RedirectController sends visitors following old permalinks to the
// imported posts.
type RedirectController struct {
	resolver PathResolver
}

// NewRedirectController creates a new RedirectController
func NewRedirectController(resolver PathResolver) *RedirectController {
	return &RedirectController{resolver: resolver}
}

// NotFound redirects known old permalinks and answers 404 otherwise.
func (rc *RedirectController) NotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if target, ok := rc.resolver.LookupPath(r.URL.Path); ok {
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
	}
	sendError(w, r, "Not found", http.StatusNotFound)
}
