// Package storage defines the read-only view of the workspace used for browsing and cataloging.
package storage

import "github.com/starford/scribe/internal/models"

// Provider is the interface for workspace read operations.
type Provider interface {
	// List returns the direct children of dir (relative to the workspace root).
	List(dir string) ([]models.Entry, error)
	// Walk returns metadata for every regular file in the workspace.
	Walk() ([]models.FileMeta, error)
	// Read returns the bytes of the file at path. A limit > 0 rejects larger files.
	Read(path string, limit int64) ([]byte, error)
	// Abs resolves path to an absolute location inside the workspace.
	Abs(path string) (string, error)
}
