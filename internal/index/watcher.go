package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/workspace"
)

// Change kinds reported to an EventCallback.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of ChangeCreated, ChangeUpdated, ChangeDeleted.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the workspace root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful catalog mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a debounced reconciliation pass.
func Watch(ctx context.Context, db Catalog, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			if strings.HasPrefix(filepath.Base(absPath), workspace.TempPrefix) {
				continue
			}
			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil || rel == "." {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				info, statErr := os.Stat(absPath)
				if statErr != nil {
					continue
				}
				if info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", rel))
					// Files may land in the directory before it is watched.
					indexNewDir(db, store, root, absPath, logger, notify)
					continue
				}
				if !info.Mode().IsRegular() {
					continue
				}
				data, readErr := store.Read(rel, 0)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				prev, _ := db.GetChecksum(rel)
				if idxErr := IndexFile(db, rel, data, info.ModTime()); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := ChangeUpdated
				if prev == "" {
					kind = ChangeCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteFile(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(ChangeDeleted, rel)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; the new path
				// arrives as a Create if it stays inside a watched directory.
				if delErr := db.DeleteFile(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					notify(ChangeDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes catalog entries whose files are gone and indexes
// on-disk files whose checksum differs from the catalog.
func reconcile(db Catalog, store storage.Provider, logger *slog.Logger, notify func(kind, rel string)) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.Walk()
	if err != nil {
		logger.Warn("reconcile: walk failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := db.DeleteFile(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				notify(ChangeDeleted, p)
			}
		}
	}

	for _, m := range metas {
		prev, known := checksums[m.Path]
		if prev == m.Checksum {
			continue
		}
		data, readErr := store.Read(m.Path, 0)
		if readErr != nil {
			continue
		}
		if idxErr := IndexFile(db, m.Path, data, m.UpdatedAt); idxErr == nil {
			kind := ChangeUpdated
			if !known {
				kind = ChangeCreated
			}
			logger.Debug("reconcile: indexed", slog.String("path", m.Path))
			notify(kind, m.Path)
		}
	}
}

// indexNewDir indexes any files found in a newly created directory.
func indexNewDir(db Catalog, store storage.Provider, root, dirPath string, logger *slog.Logger, notify func(kind, rel string)) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !d.Type().IsRegular() || strings.HasPrefix(d.Name(), workspace.TempPrefix) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		data, readErr := store.Read(rel, 0)
		if readErr != nil {
			return nil
		}
		if idxErr := IndexFile(db, rel, data, time.Time{}); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			notify(ChangeCreated, rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
