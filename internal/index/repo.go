package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/scribe/internal/models"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Snippet string `json:"snippet"`
}

// UpsertFile inserts or replaces a file row and its FTS entry within a transaction.
func (db *DB) UpsertFile(f FileRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, size, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			size       = excluded.size,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, f.Path, f.Checksum, f.Size, body, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	if err := ftsUpsert(tx, f.Path, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteFile removes path and, when path names a directory, every file below it.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// '0' sorts immediately after '/', so the range covers exactly "path/...".
	lo, hi := path+"/", path+"0"
	ftsDelete(tx, path, lo, hi)
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ? OR (path >= ? AND path < ?)`, path, lo, hi); err != nil {
		return fmt.Errorf("index: delete file: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every cataloged file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// RecordSave appends one entry to the save journal.
func (db *DB) RecordSave(rec models.SaveRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO saves (id, path, mode, bytes, ok, kind, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Path, rec.Mode, rec.Bytes, rec.OK, rec.Kind, rec.Message, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: record save: %w", err)
	}
	return nil
}

// RecentSaves returns up to limit journal entries, newest first.
func (db *DB) RecentSaves(limit int) ([]models.SaveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, path, mode, bytes, ok, kind, message, created_at
		FROM saves
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: recent saves: %w", err)
	}
	defer rows.Close()

	out := []models.SaveRecord{}
	for rows.Next() {
		var r models.SaveRecord
		if err := rows.Scan(&r.ID, &r.Path, &r.Mode, &r.Bytes, &r.OK, &r.Kind, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
