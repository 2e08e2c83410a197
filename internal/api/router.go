package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scribe/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// store resolves raw file downloads.
func NewRouter(svc Service, store storage.Provider, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	rh := NewRawHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Browsing.
	r.Get("/workspace", h.Browse)
	r.Get("/file-content", h.FileContent)
	r.Get("/raw/*", rh.ServeFile)

	// Saving.
	r.Post("/save", h.Save)
	r.Get("/saves", h.RecentSaves)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
