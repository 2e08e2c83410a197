// Package models defines the domain types for scribe.
package models

import "time"

// Entry types reported by directory listings.
const (
	EntryFile      = "file"
	EntryDirectory = "directory"
)

// Entry is one item of a single-level workspace directory listing.
type Entry struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Type         string    `json:"type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// FileMeta describes a regular file found while walking the workspace.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveRecord is one entry of the save journal.
type SaveRecord struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Mode      string    `json:"mode"`
	Bytes     int       `json:"bytes"`
	OK        bool      `json:"ok"`
	Kind      string    `json:"kind,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
