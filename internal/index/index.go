package index

import "github.com/starford/scribe/internal/models"

// Catalog defines the workspace catalog and save journal operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Catalog interface {
	UpsertFile(f FileRow, body string) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	RecordSave(rec models.SaveRecord) error
	RecentSaves(limit int) ([]models.SaveRecord, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
