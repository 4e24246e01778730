// Package main implements the entry point for the StyleAI API server,
// which recommends hairstyles for a user's photo and renders the chosen
// hairstyle in background generation tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/styleai-api/internal/config"
	"github.com/phrazzld/styleai-api/internal/platform/logger"
)

// main is the entry point for the styleai-api server.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("styleai-api stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, wires the application and serves until ctx is
// cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"task_store", cfg.Task.Store,
		"storage_backend", cfg.Storage.Backend,
		"gemini_enabled", cfg.LLM.GeminiEnabled(),
		"minimax_enabled", cfg.LLM.MiniMaxEnabled(),
		"auth_enabled", cfg.Auth.FirebaseProjectID != "")

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
