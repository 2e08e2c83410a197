// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scribe/internal/api"
	"github.com/starford/scribe/internal/index"
	"github.com/starford/scribe/internal/mcpserver"
	"github.com/starford/scribe/internal/saveservice"
	"github.com/starford/scribe/internal/sse"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/workspace"
)

// runtime holds the components shared by every entry point.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	root   string
	store  *storage.FS
	db     *index.DB
	svc    *saveservice.Service
}

func (rt *runtime) Close() error {
	return rt.db.Close()
}

// bootstrap builds the logger, workspace, catalog and save service.
func bootstrap(opts []Option, svcOpts ...saveservice.Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("workspace_root", cfg.Workspace.Root),
		slog.String("path_policy", cfg.Workspace.PathPolicy),
		slog.Bool("atomic_overwrite", cfg.Workspace.AtomicOverwrite),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure workspace directory exists.
	if err := os.MkdirAll(cfg.Workspace.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}

	writerOpts, err := cfg.Workspace.WriterOptions()
	if err != nil {
		return nil, fmt.Errorf("workspace options: %w", err)
	}
	writer, err := workspace.NewWriter(cfg.Workspace.Root, writerOpts...)
	if err != nil {
		return nil, fmt.Errorf("init writer: %w", err)
	}

	store, err := storage.NewFS(writer.Root())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	svcOpts = append([]saveservice.Option{
		saveservice.WithLogger(logger),
		saveservice.WithMaxPreviewBytes(cfg.Workspace.MaxPreviewBytes),
	}, svcOpts...)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		root:   writer.Root(),
		store:  store,
		db:     db,
		svc:    saveservice.New(writer, store, db, svcOpts...),
	}, nil
}

// Run starts the HTTP server, the workspace watcher and the SSE broker.
func Run(ctx context.Context, opts ...Option) error {
	broker := sse.NewBroker(2 * time.Second)

	rt, err := bootstrap(opts, saveservice.WithNotifier(broker))
	if err != nil {
		broker.Close()
		return err
	}
	defer rt.Close()

	cfg, logger := rt.cfg, rt.logger

	// Run initial sync.
	if err := index.Sync(rt.db, rt.store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(rt.svc, rt.store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(rt.root); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"workspace unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.db, rt.store, rt.root, logger, broker.PublishFileEvent); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams end when the broker closes their channels.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops alongside the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the workspace tools over MCP stdio. The catalog is kept
// current by a background watcher while the session lasts.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := index.Sync(rt.db, rt.store, rt.logger); err != nil {
		rt.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := index.Watch(watchCtx, rt.db, rt.store, rt.root, rt.logger, nil); err != nil {
			rt.logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	rt.logger.Info("MCP server starting on stdio", slog.String("workspace_root", rt.root))
	if err := mcpserver.New(rt.svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp serve: %w", err)
	}
	return nil
}

// Save performs a single save and returns its outcome. The error is non-nil
// only when the application itself could not be initialised.
func Save(ctx context.Context, req workspace.Request, opts ...Option) (workspace.Outcome, error) {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := bootstrap(opts)
	if err != nil {
		return workspace.Outcome{}, err
	}
	defer rt.Close()

	return rt.svc.Save(ctx, req), nil
}
