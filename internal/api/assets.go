package api

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/storage"
)

// AssetHandler serves files from the content tree, such as images that
// posts reference relative to themselves. Post sources are never served.
type AssetHandler struct {
	store     storage.Provider
	sourceExt string
}

// NewAssetHandler creates a handler over store that hides files with the
// given source extension.
func NewAssetHandler(store storage.Provider, sourceExt string) *AssetHandler {
	return &AssetHandler{store: store, sourceExt: sourceExt}
}

// ServeFile handles GET {base_path}/*.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if rel == "" || strings.EqualFold(path.Ext(rel), h.sourceExt) {
		http.NotFound(w, r)
		return
	}
	abs, err := h.store.Resolve(rel)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
