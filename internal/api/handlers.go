package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/collection"
	"github.com/starford/quill/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// optionalBool parses a query flag. An absent value yields nil.
func optionalBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			published	query		bool	false	"Filter by published flag"
//	@Success		200			{object}	PostListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	published, err := optionalBool(r.URL.Query().Get("published"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "published must be true or false")
		return
	}
	items, err := h.svc.ListPosts(r.Context(), published)
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{
		Posts: items,
		Total: len(items),
	})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a single post by slug
//	@Tags			posts
//	@Produce		json
//	@Param			slug			path		string	true	"Post slug"
//	@Param			html_entities	query		bool	false	"Escape the rendered HTML"
//	@Param			date			query		string	false	"Date display mode"	Enums(iso, human)
//	@Success		200				{object}	PostDetail
//	@Failure		404				{object}	errResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	q := r.URL.Query()
	escape, err := optionalBool(q.Get("html_entities"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "html_entities must be true or false")
		return
	}
	opts := postservice.ViewOptions{DateMode: q.Get("date")}
	if opts.DateMode == "" {
		opts.DateMode = collection.DateISO
	}
	if escape != nil {
		opts.HTMLEntities = *escape
	}

	post, err := h.svc.GetPost(r.Context(), slug, opts)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get post failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Rebuild handles POST /api/rebuild.
//
//	@Summary		Rebuild the post collection from disk
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	RebuildResult
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Rebuild(r.Context())
	if err != nil {
		slog.Error("rebuild failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "rebuild failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Ready handles GET /health/ready. It reports 503 until the first snapshot
// has been built.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "building"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Live handles GET /health/live.
func Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
