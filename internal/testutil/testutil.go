// Package testutil provides shared test helpers for setting up workspaces and catalogs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/scribe/internal/index"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/workspace"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "scribe-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace with a writer and a read-side provider
// sharing the same root.
func TestWorkspace(t *testing.T, opts ...workspace.Option) (*workspace.Writer, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	w, err := workspace.NewWriter(dir, opts...)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return w, store
}

// WriteFile places content at rel under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
