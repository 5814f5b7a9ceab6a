// Package main implements the entry point for the pixgen API server,
// which coordinates asynchronous image-generation jobs against an
// external worker and serves per-user galleries and favorite prompts.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/xsideai/pixgen-api/internal/config"
	"github.com/xsideai/pixgen-api/internal/platform/logger"
)

// main wires configuration, logging, storage, and the worker backend
// together and runs the HTTP server until shutdown.
func main() {
	ctx := context.Background()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_backend", cfg.Worker.Backend,
		"redis_enabled", cfg.Redis.URL != "")

	return cfg, appLogger, nil
}
