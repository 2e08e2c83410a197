package index

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/starford/scribe/internal/checksum"
	"github.com/starford/scribe/internal/storage"
)

// MaxIndexedBody caps how much text of a single file is kept for search.
const MaxIndexedBody = 1 << 20

// Sync walks the workspace and brings the catalog up to date:
//   - new/changed files are read and upserted
//   - files removed from disk are deleted from the catalog
func Sync(db Catalog, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.Walk()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path, 0)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile upserts data under path. Binary or oversized files are cataloged
// without a searchable body.
func IndexFile(db Catalog, path string, data []byte, modTime time.Time) error {
	body := ""
	if len(data) <= MaxIndexedBody && bytes.IndexByte(data, 0) < 0 {
		body = string(data)
	}
	if modTime.IsZero() {
		modTime = time.Now()
	}
	return db.UpsertFile(FileRow{
		Path:      path,
		Checksum:  checksum.Sum(data),
		Size:      int64(len(data)),
		UpdatedAt: modTime.UTC(),
	}, body)
}
