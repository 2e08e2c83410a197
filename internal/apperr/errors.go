// Package apperr holds sentinel errors shared by the read side and the API layer.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrIsDirectory      = errors.New("is a directory")
	ErrNotDirectory     = errors.New("not a directory")
	ErrOutsideWorkspace = errors.New("path escapes workspace root")
	ErrTooLarge         = errors.New("file too large")
)
