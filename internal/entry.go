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

	"github.com/starford/hangar/internal/api"
	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/bookmarks"
	"github.com/starford/hangar/internal/catalog"
	"github.com/starford/hangar/internal/ingest"
	"github.com/starford/hangar/internal/kv"
	"github.com/starford/hangar/internal/mcpserver"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/sse"
	"github.com/starford/hangar/internal/validate"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// pipeline returns the configured renderer wrapped with the sanitizer.
func (a *application) pipeline() (*render.Pipeline, error) {
	r, err := render.New(a.config.Render.Engine)
	if err != nil {
		return nil, err
	}
	return render.NewPipeline(r, render.NewSanitizer()), nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("mode", cfg.App.Mode),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("artifacts_dir", cfg.Artifacts.Dir),
		slog.String("render_engine", cfg.Render.Engine),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	pipeline, err := app.pipeline()
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	store, err := kv.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	validator := validate.New(cfg.Limits)
	repo := catalog.New(catalog.ArtifactLoader{Dir: cfg.Artifacts.Dir}, logger)
	builder := ingest.NewBuilder(pipeline, logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(api.Deps{
		Catalog:   repo,
		Bookmarks: bookmarks.NewService(store, validator, logger),
		Validator: validator,
		Renderer:  pipeline,
		Events:    broker,
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

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
		if !repo.Initialized() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","source":%q,"version":%q}`, repo.Source(), repo.Version())
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Load content; in dev mode rebuild it from source first.
	g.Go(func() error {
		if cfg.App.DevMode() {
			snap, _, buildErr := builder.Build(gCtx, cfg.Content.Dir)
			if buildErr != nil {
				logger.Warn("initial build failed", slog.String("error", buildErr.Error()))
			} else if writeErr := ingest.WriteArtifacts(cfg.Artifacts.Dir, snap); writeErr != nil {
				logger.Warn("write artifacts failed", slog.String("error", writeErr.Error()))
			}
		}
		if repo.EnsureInitialized(gCtx) != nil || !cfg.App.DevMode() {
			return nil
		}
		return ingest.Watch(gCtx, builder, cfg.Content.Dir, ingest.WatchOptions{
			ArtifactsDir: cfg.Artifacts.Dir,
			OnRebuild: func(snap *artifact.Snapshot) {
				repo.Replace(snap)
				broker.PublishContentChange(sse.ContentChange{
					Version:   snap.Version,
					Documents: snap.Len(),
					Chapters:  len(snap.Index.Chapters()),
				})
			},
		})
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

		// Ends open SSE streams so Shutdown does not wait for them.
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

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// Ingest builds the artifacts from the content directory once.
func Ingest(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	pipeline, err := app.pipeline()
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	snap, sum, err := ingest.NewBuilder(pipeline, logger).Build(ctx, cfg.Content.Dir)
	if err != nil {
		return err
	}
	if err := ingest.WriteArtifacts(cfg.Artifacts.Dir, snap); err != nil {
		return err
	}
	logger.Info("Artifacts written",
		slog.String("dir", cfg.Artifacts.Dir),
		slog.Int("documents", sum.Documents),
		slog.Int("skipped", sum.Skipped))
	return nil
}

// ServeMCP exposes the content queries over MCP stdio. Logs go to stderr
// unless redirected, since stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	pipeline, err := app.pipeline()
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	repo := catalog.New(catalog.ArtifactLoader{Dir: cfg.Artifacts.Dir}, logger)
	if err := repo.EnsureInitialized(ctx); err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("source", repo.Source()))
	return mcpserver.New(repo, validate.New(cfg.Limits), pipeline, app.version).ServeStdio()
}
