//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE fallback on files.body.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _ string) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _, _, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, substr(body, max(instr(body, ?) - 40, 1), 200)
		FROM files
		WHERE body LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC
		LIMIT ?
	`, query, like, like, limit)
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
