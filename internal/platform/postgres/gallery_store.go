// Package postgres provides PostgreSQL implementations of the store
// interfaces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/platform/logger"
	"github.com/xsideai/pixgen-api/internal/store"
)

// PostgreSQL error codes
const pgUniqueViolationCode = "23505"

// PostgresGalleryStore implements the store.GalleryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGalleryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGalleryStore creates a new PostgreSQL implementation of the
// GalleryStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresGalleryStore(db store.DBTX, logger *slog.Logger) *PostgresGalleryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGalleryStore{
		db:     db,
		logger: logger.With(slog.String("component", "gallery_store")),
	}
}

// Ensure PostgresGalleryStore implements store.GalleryStore interface
var _ store.GalleryStore = (*PostgresGalleryStore)(nil)

// Append implements store.GalleryStore.Append.
// It saves a new gallery item to the database, handling domain validation.
// Returns store.ErrInvalidEntity wrapped around the validation error if
// the item data is invalid, and store.ErrDuplicate if the item id already
// exists.
func (s *PostgresGalleryStore) Append(ctx context.Context, item *domain.GalleryItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("gallery item validation failed during append",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO gallery_items (id, owner_id, url, prompt, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.OwnerID,
		item.URL,
		item.Prompt,
		item.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("duplicate gallery item id during append",
				slog.String("item_id", item.ID.String()))
			return fmt.Errorf("%w: gallery item %s", store.ErrDuplicate, item.ID)
		}

		log.Error("failed to append gallery item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()),
			slog.String("owner_id", item.OwnerID))
		return err
	}

	log.Info("gallery item appended",
		slog.String("item_id", item.ID.String()),
		slog.String("owner_id", item.OwnerID))
	return nil
}

// ListByOwner implements store.GalleryStore.ListByOwner.
// It retrieves all gallery items for the owner, newest first. An unknown
// owner yields an empty slice, not an error.
func (s *PostgresGalleryStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.GalleryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, owner_id, url, prompt, created_at
		FROM gallery_items
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list gallery items",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	items := make([]*domain.GalleryItem, 0)
	for rows.Next() {
		var item domain.GalleryItem
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.URL,
			&item.Prompt,
			&item.CreatedAt,
		); err != nil {
			log.Error("failed to scan gallery item",
				slog.String("error", err.Error()),
				slog.String("owner_id", ownerID))
			return nil, err
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating gallery items",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return nil, err
	}

	log.Debug("gallery items listed",
		slog.String("owner_id", ownerID),
		slog.Int("count", len(items)))
	return items, nil
}
