package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/postservice"
)

// NewRouter creates a chi router with all /api routes mounted.
// authEnabled controls whether Bearer token auth is enforced on the
// mutating routes; reads are always public.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *postservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)

	// Rebuild (auth-protected).
	r.With(AuthMiddleware(authEnabled, token)).Post("/rebuild", h.Rebuild)

	// SSE endpoint.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
