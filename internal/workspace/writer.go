// Package workspace persists text content to files under a sandboxed root directory.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// TempPrefix names the scratch files created by atomic overwrites.
const TempPrefix = ".scribe-tmp-"

// Request is a single save. It is consumed once and not retained.
type Request struct {
	Content  string `json:"content"`
	FilePath string `json:"file_path"`
	Mode     Mode   `json:"mode,omitempty"`
}

// Writer saves content relative to a fixed workspace root. It holds no
// mutable state and is safe for concurrent use. Concurrent saves to the same
// file are not serialized.
type Writer struct {
	root     string
	policy   Policy
	atomic   bool
	maxBytes int64
}

// Option configures a Writer.
type Option func(*Writer)

// WithPolicy sets the path confinement policy.
func WithPolicy(p Policy) Option {
	return func(w *Writer) {
		w.policy = p
	}
}

// WithAtomicOverwrite makes overwrites go through a temp file, fsync and rename.
func WithAtomicOverwrite(enabled bool) Option {
	return func(w *Writer) {
		w.atomic = enabled
	}
}

// WithMaxContentBytes rejects content larger than n bytes. Zero disables the limit.
func WithMaxContentBytes(n int64) Option {
	return func(w *Writer) {
		w.maxBytes = n
	}
}

// NewWriter creates a Writer rooted at root. The root must already exist;
// it is made absolute and symlinks in it are resolved.
func NewWriter(root string, opts ...Option) (*Writer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("workspace: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace: root is not a directory: %s", resolved)
	}

	w := &Writer{root: resolved, policy: PolicyStrict}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Root returns the canonical workspace root.
func (w *Writer) Root() string {
	return w.root
}

// Policy returns the configured confinement policy.
func (w *Writer) Policy() Policy {
	return w.policy
}

// Save writes req.Content to req.FilePath under the workspace root, creating
// missing parent directories. It never returns an error: every failure is
// reported through the returned Outcome.
//
// ctx is only checked before any I/O starts; a write in progress runs to completion.
func (w *Writer) Save(ctx context.Context, req Request) Outcome {
	rel := normalize(req.FilePath)

	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return failed(KindInvalidMode, rel, req.Mode, err)
	}
	if err := ctx.Err(); err != nil {
		return failed(KindCanceled, rel, mode, err)
	}
	if w.maxBytes > 0 && int64(len(req.Content)) > w.maxBytes {
		return failed(KindContentTooLarge, rel, mode,
			fmt.Errorf("%w: %d bytes (limit %d)", ErrContentTooLarge, len(req.Content), w.maxBytes))
	}

	target, kind, err := w.resolve(rel)
	if err != nil {
		return failed(kind, rel, mode, err)
	}

	if err := ensureDir(filepath.Dir(target)); err != nil {
		return failed(KindDirectoryProvisioningFailed, rel, mode, err)
	}

	var (
		n       int
		created bool
	)
	if mode == ModeOverwrite && w.atomic {
		n, created, err = writeAtomic(target, req.Content)
	} else {
		n, created, err = writeFile(target, req.Content, mode)
	}
	if err != nil {
		return failed(KindWriteFailed, rel, mode, err)
	}

	return Outcome{Path: rel, Mode: mode, Bytes: n, Created: created}
}

// Resolve returns the absolute target for a caller path under the writer's policy.
func (w *Writer) Resolve(filePath string) (string, error) {
	target, _, err := w.resolve(normalize(filePath))
	return target, err
}

// normalize strips exactly one leading path separator.
func normalize(p string) string {
	if p != "" && (p[0] == '/' || p[0] == os.PathSeparator) {
		return p[1:]
	}
	return p
}

func (w *Writer) resolve(rel string) (string, Kind, error) {
	if strings.TrimSpace(rel) == "" {
		return "", KindInvalidPath, ErrEmptyPath
	}
	if last := rel[len(rel)-1]; last == '/' || last == os.PathSeparator {
		return "", KindInvalidPath, fmt.Errorf("%w: %s", ErrDirectoryPath, rel)
	}

	if w.policy == PolicyLegacy {
		target := filepath.Join(w.root, rel)
		if target == w.root {
			return "", KindInvalidPath, ErrRootTarget
		}
		return target, KindNone, nil
	}

	cleaned := filepath.Clean(rel)
	if cleaned == "." {
		return "", KindInvalidPath, ErrRootTarget
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", KindPathOutsideWorkspace, fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	target, err := securejoin.SecureJoin(w.root, cleaned)
	if err != nil {
		return "", KindInvalidPath, fmt.Errorf("resolve %s: %w", rel, err)
	}
	if target == w.root {
		return "", KindInvalidPath, ErrRootTarget
	}
	return target, KindNone, nil
}

// ensureDir creates dir and its ancestors. A directory that appears
// concurrently counts as success.
func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return err
}

func writeFile(target, content string, mode Mode) (int, bool, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == ModeAppend {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	_, statErr := os.Stat(target)
	created := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return 0, false, err
	}
	n, err := f.WriteString(content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, false, err
	}
	return n, created, nil
}

// writeAtomic writes content to a temp file beside target, fsyncs and renames it into place.
// An existing file keeps its permission bits. A symlink at target is replaced
// by the new file rather than written through.
func writeAtomic(target, content string) (int, bool, error) {
	perm := os.FileMode(0o644)
	info, statErr := os.Stat(target)
	created := errors.Is(statErr, fs.ErrNotExist)
	if statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), TempPrefix+"*")
	if err != nil {
		return 0, false, fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := tmp.WriteString(content)
	if err != nil {
		return n, false, fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return n, false, fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, false, fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, false, fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return n, false, fmt.Errorf("rename: %w", err)
	}
	success = true
	return n, created, nil
}
