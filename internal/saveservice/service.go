// Package saveservice coordinates saves with the workspace catalog and journal.
package saveservice

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/scribe/internal/index"
	"github.com/starford/scribe/internal/models"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/workspace"
)

// DefaultMaxPreviewBytes bounds Preview when no limit is configured.
const DefaultMaxPreviewBytes = 1 << 20

// Saver performs the actual file write.
type Saver interface {
	Save(ctx context.Context, req workspace.Request) workspace.Outcome
}

// Notifier receives a journal record after every save.
type Notifier interface {
	PublishSave(rec models.SaveRecord)
}

// Service wraps the writer with cataloging, journaling and read-side queries.
type Service struct {
	writer     Saver
	store      storage.Provider
	db         index.Catalog
	notifier   Notifier
	logger     *slog.Logger
	maxPreview int64
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier attaches a receiver for save.recorded events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the logger used for catalog and journal failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMaxPreviewBytes caps the size of files returned by Preview.
func WithMaxPreviewBytes(n int64) Option {
	return func(s *Service) {
		s.maxPreview = n
	}
}

// New creates a save service.
func New(writer Saver, store storage.Provider, db index.Catalog, opts ...Option) *Service {
	s := &Service{
		writer:     writer,
		store:      store,
		db:         db,
		logger:     slog.Default(),
		maxPreview: DefaultMaxPreviewBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the request through the writer, then catalogs the file and
// journals the attempt. The returned outcome is always the writer's.
func (s *Service) Save(ctx context.Context, req workspace.Request) workspace.Outcome {
	out := s.writer.Save(ctx, req)

	if out.OK() {
		s.catalog(out.Path)
	}

	rec := models.SaveRecord{
		ID:        uuid.NewString(),
		Path:      out.Path,
		Mode:      string(out.Mode),
		Bytes:     out.Bytes,
		OK:        out.OK(),
		Message:   out.Message(),
		CreatedAt: s.now().UTC(),
	}
	if !out.OK() {
		rec.Kind = out.Kind().String()
	}

	if err := s.db.RecordSave(rec); err != nil {
		s.logger.Warn("save: journal failed", slog.String("path", rec.Path), slog.String("error", err.Error()))
	}
	if s.notifier != nil {
		s.notifier.PublishSave(rec)
	}

	if out.OK() {
		s.logger.Info("save: ok",
			slog.String("path", out.Path),
			slog.String("mode", string(out.Mode)),
			slog.Int("bytes", out.Bytes),
		)
	} else {
		s.logger.Warn("save: failed",
			slog.String("path", out.Path),
			slog.String("kind", out.Kind().String()),
			slog.String("error", out.Err.Error()),
		)
	}
	return out
}

func (s *Service) catalog(path string) {
	rel := filepath.ToSlash(filepath.Clean(path))
	data, err := s.store.Read(rel, 0)
	if err != nil {
		s.logger.Warn("save: catalog read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := index.IndexFile(s.db, rel, data, s.now()); err != nil {
		s.logger.Warn("save: catalog failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
}

// Browse lists the direct children of dir.
func (s *Service) Browse(_ context.Context, dir string) ([]models.Entry, error) {
	entries, err := s.store.List(dir)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(entries), nil
}

// Preview returns the text of a file, rejecting files above the preview cap.
func (s *Service) Preview(_ context.Context, path string) (string, error) {
	data, err := s.store.Read(path, s.maxPreview)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Search runs a catalog query. An empty query yields no results.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []index.SearchResult{}, nil
	}
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// RecentSaves returns the newest journal entries first.
func (s *Service) RecentSaves(_ context.Context, limit int) ([]models.SaveRecord, error) {
	return s.db.RecentSaves(limit)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
