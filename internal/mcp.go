package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aldwin/othala/internal/history"
	"github.com/aldwin/othala/internal/mcpserver"
	"github.com/aldwin/othala/internal/storage"
	"github.com/aldwin/othala/internal/syncengine"
)

// RunMCP starts the MCP server on stdin/stdout instead of the HTTP
// server. Logs go to stderr so they do not corrupt the stdio transport.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	versions, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}
	defer versions.Close()

	eng := syncengine.New(store, versions, syncengine.Config{
		DebounceWindow: cfg.Sync.DebounceWindow(),
		RenamePolicy:   syncengine.RenamePolicy(cfg.Sync.RenamePolicy),
	}, logger, nil)

	logger.Info("Starting MCP server on stdio", slog.String("vault_path", cfg.Vault.Path))

	srv := mcpserver.New(eng)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
