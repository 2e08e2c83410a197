package api

import (
	"github.com/starford/scribe/internal/index"
	"github.com/starford/scribe/internal/models"
	"github.com/starford/scribe/internal/workspace"
)

// SaveRequest is the request body for saving content.
type SaveRequest = workspace.Request

// SaveResponse reports the outcome of a save.
type SaveResponse struct {
	OK      bool   `json:"ok" example:"true" validate:"required"`
	Path    string `json:"path,omitempty" example:"reports/summary.md"`
	Kind    string `json:"kind,omitempty" example:"path_outside_workspace"`
	Message string `json:"message" example:"Content saved to workspace: reports/summary.md" validate:"required"`
}

// Entry is one item in a directory listing (aliased from the domain layer).
type Entry = models.Entry

// SaveRecord is one journal entry (aliased from the domain layer).
type SaveRecord = models.SaveRecord

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// SavesResponse wraps journal entries.
type SavesResponse struct {
	Saves []SaveRecord `json:"saves" validate:"required"`
}

func saveResponse(out workspace.Outcome) SaveResponse {
	resp := SaveResponse{OK: out.OK(), Path: out.Path, Message: out.Message()}
	if !out.OK() {
		resp.Kind = out.Kind().String()
	}
	return resp
}
