package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/models"
	"github.com/starford/scribe/internal/workspace"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // canonical absolute path to the workspace directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the canonical workspace root.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the workspace root and rejects
// any result that escapes it, lexically or through a symlink. A single leading separator is tolerated so
// browser paths like "/docs" behave like "docs".
func (f *FS) safePath(rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.FromSlash(rel), string(os.PathSeparator))
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: %w: %s", apperr.ErrOutsideWorkspace, rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: %w: %s", apperr.ErrOutsideWorkspace, rel)
	}
	// Symlinks are resolved as if the root were "/", so a link pointing
	// outside the workspace lands back inside it.
	resolved, err := securejoin.SecureJoin(f.root, cleaned)
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", rel, err)
	}
	return resolved, nil
}

func (f *FS) rel(abs string) string {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// Abs resolves path to an absolute location inside the workspace.
func (f *FS) Abs(path string) (string, error) {
	return f.safePath(path)
}

// List returns the direct children of dir, directories first, then by name.
// Scratch files left by atomic overwrites are hidden.
func (f *FS) List(dir string) ([]models.Entry, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	des, err := os.ReadDir(base)
	if err != nil {
		return nil, classify("list", dir, err)
	}

	out := make([]models.Entry, 0, len(des))
	for _, d := range des {
		if strings.HasPrefix(d.Name(), workspace.TempPrefix) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		e := models.Entry{
			Name:         d.Name(),
			Path:         f.rel(filepath.Join(base, d.Name())),
			Type:         models.EntryFile,
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		}
		if d.IsDir() {
			e.Type = models.EntryDirectory
			e.Size = 0
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type == models.EntryDirectory
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Walk returns metadata for every regular file under the root.
func (f *FS) Walk() ([]models.FileMeta, error) {
	var out []models.FileMeta
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() || strings.HasPrefix(d.Name(), workspace.TempPrefix) {
			return nil
		}
		meta, err := f.meta(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		out = append(out, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: walk: %w", err)
	}
	return out, nil
}

func (f *FS) meta(abs string) (models.FileMeta, error) {
	file, err := os.Open(abs)
	if err != nil {
		return models.FileMeta{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return models.FileMeta{}, err
	}
	sum, n, err := checksum.SumReader(file)
	if err != nil {
		return models.FileMeta{}, err
	}
	return models.FileMeta{
		Path:      f.rel(abs),
		Checksum:  sum,
		Size:      n,
		UpdatedAt: info.ModTime().UTC(),
	}, nil
}

// Read returns the raw bytes of a workspace file.
func (f *FS) Read(path string, limit int64) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, classify("read", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrIsDirectory)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("storage: read %s: %w (size %d, limit %d)", path, apperr.ErrTooLarge, info.Size(), limit)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return data, nil
}

func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("storage: %s %s: %w", op, path, apperr.ErrNotFound)
	case errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("storage: %s %s: %w", op, path, apperr.ErrNotDirectory)
	default:
		return fmt.Errorf("storage: %s %s: %w", op, path, err)
	}
}
