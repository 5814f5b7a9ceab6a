package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xsideai/pixgen-api/internal/blob"
	"github.com/xsideai/pixgen-api/internal/config"
	"github.com/xsideai/pixgen-api/internal/job"
	"github.com/xsideai/pixgen-api/internal/platform/gemini"
	"github.com/xsideai/pixgen-api/internal/platform/kie"
	"github.com/xsideai/pixgen-api/internal/platform/postgres"
	"github.com/xsideai/pixgen-api/internal/platform/redisstore"
	"github.com/xsideai/pixgen-api/internal/store"
	"github.com/xsideai/pixgen-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	// Stores
	galleryStore  store.GalleryStore
	favoriteStore store.FavoriteStore
	registry      job.PendingRegistry
	results       job.ResultStore
	blobs         *blob.Store

	// Services
	worker     worker.Worker
	reconciler *job.Reconciler
	status     *job.StatusService
	submitter  *job.Submitter
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Durable stores.
	app.galleryStore = postgres.NewPostgresGalleryStore(db, logger)
	app.favoriteStore = postgres.NewPostgresFavoriteStore(db, logger)

	// Job state: Redis when configured, in-memory otherwise.
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		app.redis = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}

		jobStore := redisstore.NewJobStore(app.redis, logger)
		app.registry = jobStore
		app.results = jobStore
		logger.Info("Redis job state initialized")
	} else {
		app.registry = job.NewMemoryRegistry()
		app.results = job.NewMemoryResultStore()
		logger.Info("In-memory job state initialized")
	}

	// Ephemeral blob store for staged reference images and in-process
	// generation results.
	var blobOpts []blob.Option
	if cfg.Blob.TTLSeconds > 0 {
		blobOpts = append(blobOpts, blob.WithTTL(time.Duration(cfg.Blob.TTLSeconds)*time.Second))
	}
	if cfg.Blob.GraceSeconds > 0 {
		blobOpts = append(blobOpts, blob.WithGrace(time.Duration(cfg.Blob.GraceSeconds)*time.Second))
	}
	app.blobs = blob.NewStore(blobOpts...)

	// Reconciliation state machine shared by the callback and pull paths.
	app.reconciler = job.NewReconciler(app.registry, app.results, app.galleryStore, logger)

	// Worker backend.
	var err error
	app.worker, err = setupWorker(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worker backend: %w", err)
	}
	logger.Info("Worker backend initialized", "backend", cfg.Worker.Backend)

	app.status = job.NewStatusService(app.results, app.reconciler, app.worker, logger)
	app.submitter = job.NewSubmitter(app.registry, app.worker, app.blobs, cfg.Server.BaseURL, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupWorker builds the configured worker backend.
func setupWorker(ctx context.Context, app *application) (worker.Worker, error) {
	cfg := app.config
	switch cfg.Worker.Backend {
	case "kie":
		return kie.NewClient(cfg.Worker.KIEBaseURL, cfg.Worker.KIEAPIKey, app.logger), nil
	case "gemini":
		return gemini.NewWorker(
			ctx,
			cfg.Worker.GeminiAPIKey,
			cfg.Worker.GeminiModel,
			app.blobs,
			cfg.Server.BaseURL,
			app.reconciler,
			app.logger,
		)
	default:
		return nil, fmt.Errorf("unknown worker backend %q", cfg.Worker.Backend)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.blobs != nil {
		app.blobs.Close()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
