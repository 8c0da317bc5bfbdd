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

	"github.com/aldwin/othala/internal/api"
	"github.com/aldwin/othala/internal/history"
	"github.com/aldwin/othala/internal/sse"
	"github.com/aldwin/othala/internal/storage"
	"github.com/aldwin/othala/internal/syncengine"
	"github.com/aldwin/othala/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("history_path", cfg.History.Path),
		slog.Duration("debounce_window", cfg.Sync.DebounceWindow()),
		slog.String("rename_policy", cfg.Sync.RenamePolicy),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite version log.
	versions, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}
	defer versions.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Session registry and sync engine. Commit results are fanned out
	// to SSE subscribers so open editors learn about renames.
	registry := api.NewSessionRegistry()
	eng := syncengine.New(store, versions, syncengine.Config{
		DebounceWindow: cfg.Sync.DebounceWindow(),
		RenamePolicy:   syncengine.RenamePolicy(cfg.Sync.RenamePolicy),
	}, logger, func(sessionID string, res syncengine.CommitResult) {
		switch {
		case res.Err != nil:
			broker.PublishDocumentEvent("save_failed", res.Path)
		case res.Renamed:
			broker.PublishDocumentEvent("renamed", res.Path)
		default:
			broker.PublishDocumentEvent("saved", res.Path)
		}
	})

	apiRouter := api.NewRouter(eng, registry, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start vault watcher. External edits feed the same SSE stream as
	// engine commits so clients refresh their tree either way.
	g.Go(func() error {
		if err := watcher.Watch(gCtx, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishDocumentEvent(kind, path)
		}); err != nil {
			logger.Warn("vault watcher stopped", slog.String("error", err.Error()))
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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
