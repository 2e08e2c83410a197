package workspace

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath       = errors.New("file path is empty")
	ErrRootTarget      = errors.New("file path resolves to the workspace root")
	ErrDirectoryPath   = errors.New("file path ends in a separator")
	ErrOutsideRoot     = errors.New("path escapes workspace root")
	ErrUnknownMode     = errors.New("unknown write mode")
	ErrContentTooLarge = errors.New("content too large")
)

// Kind classifies why a save failed.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidPath
	KindPathOutsideWorkspace
	KindInvalidMode
	KindContentTooLarge
	KindDirectoryProvisioningFailed
	KindWriteFailed
	KindCanceled
)

var kindNames = map[Kind]string{
	KindNone:                        "none",
	KindInvalidPath:                 "invalid_path",
	KindPathOutsideWorkspace:        "path_outside_workspace",
	KindInvalidMode:                 "invalid_mode",
	KindContentTooLarge:             "content_too_large",
	KindDirectoryProvisioningFailed: "directory_provisioning_failed",
	KindWriteFailed:                 "write_failed",
	KindCanceled:                    "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SaveError carries the classified cause of a failed save.
type SaveError struct {
	Kind  Kind
	Path  string
	Cause error
}

func (e *SaveError) Error() string {
	switch e.Kind {
	case KindDirectoryProvisioningFailed:
		return fmt.Sprintf("create directory for %s: %v", e.Path, e.Cause)
	case KindWriteFailed:
		return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
	default:
		return e.Cause.Error()
	}
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
