package workspace

import "fmt"

// Outcome is the result of a single save. A failed save is reported through
// Err rather than a Go error so every caller receives the same shape.
type Outcome struct {
	// Path is the caller-relative path after leading-separator normalization.
	Path    string
	Mode    Mode
	Bytes   int
	Created bool
	Err     *SaveError
}

// OK reports whether the save succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Kind returns the failure kind, or KindNone on success.
func (o Outcome) Kind() Kind {
	if o.Err == nil {
		return KindNone
	}
	return o.Err.Kind
}

// Message renders the outcome for display to an agent or user.
func (o Outcome) Message() string {
	if o.Err != nil {
		return fmt.Sprintf("Error saving file: %v", o.Err)
	}
	return fmt.Sprintf("Content saved to workspace: %s", o.Path)
}

func (o Outcome) String() string {
	return o.Message()
}

func failed(kind Kind, path string, mode Mode, cause error) Outcome {
	return Outcome{
		Path: path,
		Mode: mode,
		Err:  &SaveError{Kind: kind, Path: path, Cause: cause},
	}
}
