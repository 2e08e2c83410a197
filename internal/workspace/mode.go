package workspace

import (
	"fmt"
	"strings"
)

// Mode selects how a save opens its target file.
type Mode string

const (
	// ModeOverwrite truncates an existing file or creates a new one.
	ModeOverwrite Mode = "overwrite"
	// ModeAppend creates the file if absent and writes after existing bytes.
	ModeAppend Mode = "append"
)

// ParseMode maps a caller-supplied mode onto a Mode. The empty string selects
// ModeOverwrite, and the short forms "w" and "a" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "w", string(ModeOverwrite):
		return ModeOverwrite, nil
	case "a", string(ModeAppend):
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownMode, s, ModeOverwrite, ModeAppend)
	}
}

// Policy controls how strictly caller paths are confined to the workspace root.
type Policy string

const (
	// PolicyStrict rejects paths that escape the root after cleaning and
	// resolves symlinks without leaving the root.
	PolicyStrict Policy = "strict"
	// PolicyLegacy only strips a single leading separator before joining.
	// Paths containing ".." segments can reach outside the root.
	PolicyLegacy Policy = "legacy"
)

// ParsePolicy maps a configuration value onto a Policy. Empty selects PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyLegacy:
		return PolicyLegacy, nil
	default:
		return "", fmt.Errorf("workspace: unknown path policy %q", s)
	}
}
