package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/models"
	"github.com/starford/scribe/internal/workspace"
)

func tempWorkspace(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func put(t *testing.T, s *FS, rel, content string) {
	t.Helper()
	abs := filepath.Join(s.Root(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	s := tempWorkspace(t)
	put(t, s, "note.txt", "# Hello\nWorld\n")

	got, err := s.Read("note.txt", 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}

	// Leading slash is tolerated.
	if _, err := s.Read("/note.txt", 0); err != nil {
		t.Errorf("Read with leading slash: %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	s := tempWorkspace(t)
	put(t, s, "dir/big.txt", "0123456789")

	cases := []struct {
		path  string
		limit int64
		want  error
	}{
		{"missing.txt", 0, apperr.ErrNotFound},
		{"dir", 0, apperr.ErrIsDirectory},
		{"dir/big.txt", 5, apperr.ErrTooLarge},
	}
	for _, c := range cases {
		_, err := s.Read(c.path, c.limit)
		if !errors.Is(err, c.want) {
			t.Errorf("Read(%q) err = %v, want %v", c.path, err, c.want)
		}
	}
}

func TestListSortsDirectoriesFirst(t *testing.T) {
	s := tempWorkspace(t)
	put(t, s, "b.txt", "bb")
	put(t, s, "a.txt", "a")
	put(t, s, "zdir/inner.txt", "x")
	put(t, s, workspace.TempPrefix+"123", "scratch")

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(items), items)
	}
	if items[0].Name != "zdir" || items[0].Type != models.EntryDirectory {
		t.Errorf("first entry = %+v, want directory zdir", items[0])
	}
	if items[1].Name != "a.txt" || items[1].Size != 1 || items[1].Type != models.EntryFile {
		t.Errorf("second entry = %+v", items[1])
	}
	if items[2].Path != "b.txt" {
		t.Errorf("third entry path = %q", items[2].Path)
	}
}

func TestListSubdirectory(t *testing.T) {
	s := tempWorkspace(t)
	put(t, s, "docs/guide/intro.md", "hi")

	items, err := s.List("docs")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "docs/guide" {
		t.Errorf("items = %+v", items)
	}

	if _, err := s.List("docs/guide/intro.md"); !errors.Is(err, apperr.ErrNotDirectory) {
		t.Errorf("List on file err = %v, want ErrNotDirectory", err)
	}
	if _, err := s.List("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("List missing err = %v, want ErrNotFound", err)
	}
}

func TestWalk(t *testing.T) {
	s := tempWorkspace(t)
	put(t, s, "a.md", "a")
	put(t, s, "sub/b.txt", "bb")
	put(t, s, "sub/"+workspace.TempPrefix+"x", "scratch")

	metas, err := s.Walk()
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2", len(metas))
	}
	byPath := map[string]models.FileMeta{}
	for _, m := range metas {
		byPath[m.Path] = m
	}
	b, ok := byPath["sub/b.txt"]
	if !ok {
		t.Fatalf("sub/b.txt missing from %+v", metas)
	}
	if b.Size != 2 || b.Checksum != checksum.Sum([]byte("bb")) {
		t.Errorf("meta = %+v", b)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWorkspace(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"//etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p, 0); !errors.Is(err, apperr.ErrOutsideWorkspace) {
			t.Errorf("Read(%q) err = %v, want ErrOutsideWorkspace", p, err)
		}
		if _, err := s.List(p); !errors.Is(err, apperr.ErrOutsideWorkspace) {
			t.Errorf("List(%q) err = %v, want ErrOutsideWorkspace", p, err)
		}
	}
}

func TestSymlinkOutsideWorkspaceNotFollowed(t *testing.T) {
	s := tempWorkspace(t)
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("TOPSECRET"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(s.Root(), "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(s.Root(), "direct.txt")); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{"link/secret.txt", "direct.txt"} {
		got, err := s.Read(p, 0)
		if err == nil {
			t.Errorf("Read(%q) = %q, want error", p, got)
		}
		abs, err := s.Abs(p)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(abs, s.Root()+string(os.PathSeparator)) {
			t.Errorf("Abs(%q) = %q escapes root %q", p, abs, s.Root())
		}
	}
	if _, err := s.List("link"); err == nil {
		t.Error("List through outside symlink should fail")
	}
}

func TestSymlinkInsideWorkspaceFollowed(t *testing.T) {
	s := tempWorkspace(t)
	put(t, s, "real/data.txt", "inside")
	if err := os.Symlink("real", filepath.Join(s.Root(), "alias")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := s.Read("alias/data.txt", 0)
	if err != nil || string(got) != "inside" {
		t.Errorf("Read through inside symlink = %q, %v", got, err)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "scribe-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
