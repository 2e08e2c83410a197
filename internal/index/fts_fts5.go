//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
			path UNINDEXED,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, body string) error {
	_, _ = tx.Exec(`DELETE FROM files_fts WHERE path = ?`, path)
	if body == "" {
		return nil
	}
	if _, err := tx.Exec(`INSERT INTO files_fts (path, body) VALUES (?, ?)`, path, body); err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path, lo, hi string) {
	_, _ = tx.Exec(`DELETE FROM files_fts WHERE path = ? OR (path >= ? AND path < ?)`, path, lo, hi)
}

// quoteFTS turns free text into an FTS5 phrase query so punctuation in
// user input is not parsed as query syntax.
func quoteFTS(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       snippet(files_fts, 1, '<b>', '</b>', '...', 32)
		FROM files_fts
		WHERE files_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, quoteFTS(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
