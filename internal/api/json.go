package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/scribe/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeReadError maps read-side sentinel errors onto HTTP statuses.
func writeReadError(w http.ResponseWriter, op, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrOutsideWorkspace):
		writeJSON(w, http.StatusBadRequest, errorBody("path outside workspace"))
	case errors.Is(err, apperr.ErrIsDirectory):
		writeJSON(w, http.StatusBadRequest, errorBody("path is a directory"))
	case errors.Is(err, apperr.ErrNotDirectory):
		writeJSON(w, http.StatusBadRequest, errorBody("path is not a directory"))
	case errors.Is(err, apperr.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("file too large to preview"))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
