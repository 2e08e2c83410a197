package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/scribe/internal/index"
	"github.com/starford/scribe/internal/models"
	"github.com/starford/scribe/internal/workspace"
)

// maxSaveBody bounds the JSON body of POST /api/save. The content limit
// itself is enforced by the writer.
const maxSaveBody = 32 << 20

// Service is the workspace behaviour the handlers depend on.
type Service interface {
	Save(ctx context.Context, req workspace.Request) workspace.Outcome
	Browse(ctx context.Context, dir string) ([]models.Entry, error)
	Preview(ctx context.Context, path string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
	RecentSaves(ctx context.Context, limit int) ([]models.SaveRecord, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Browse handles GET /api/workspace.
//
//	@Summary		List one level of the workspace
//	@Tags			workspace
//	@Produce		json
//	@Param			path	query		string	false	"Directory relative to the workspace root"
//	@Success		200		{array}		Entry
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace [get]
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")
	entries, err := h.svc.Browse(r.Context(), dir)
	if err != nil {
		writeReadError(w, "browse", dir, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// FileContent handles GET /api/file-content.
//
//	@Summary		Get the text of a workspace file
//	@Tags			workspace
//	@Produce		plain
//	@Param			path	query		string	true	"File path relative to the workspace root"
//	@Success		200		{string}	string
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/file-content [get]
func (h *Handler) FileContent(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	text, err := h.svc.Preview(r.Context(), path)
	if err != nil {
		writeReadError(w, "preview", path, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// Save handles POST /api/save.
//
//	@Summary		Save content to a workspace file
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveRequest	true	"Content, target path and mode"
//	@Success		200		{object}	SaveResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	SaveResponse
//	@Security		BearerAuth
//	@Router			/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSaveBody)
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	out := h.svc.Save(r.Context(), req)
	status := http.StatusOK
	if !out.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, saveResponse(out))
}

// RecentSaves handles GET /api/saves.
//
//	@Summary		List recent save attempts
//	@Tags			workspace
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries"
//	@Success		200		{object}	SavesResponse
//	@Security		BearerAuth
//	@Router			/saves [get]
func (h *Handler) RecentSaves(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.svc.RecentSaves(r.Context(), limit)
	if err != nil {
		slog.Error("recent saves failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SavesResponse{Saves: recs})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across workspace files
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
