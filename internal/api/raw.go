package api

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/storage"
)

// RawHandler serves workspace files as downloads.
type RawHandler struct {
	store storage.Provider
}

// NewRawHandler creates a handler resolving paths through store.
func NewRawHandler(store storage.Provider) *RawHandler {
	return &RawHandler{store: store}
}

// rawPath extracts the file path from the URL (everything after /raw/).
// Supports encoded slashes (e.g. reports%2Fsummary.md).
func rawPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ServeFile handles GET /api/raw/*.
func (h *RawHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	path := rawPath(r)
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	abs, err := h.store.Abs(path)
	if err != nil {
		if errors.Is(err, apperr.ErrOutsideWorkspace) {
			http.Error(w, "path outside workspace", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, statErr := os.Stat(abs)
	if os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	if statErr != nil || info.IsDir() {
		http.Error(w, "not a file", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, abs)
}
