package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/platform/logger"
	"github.com/xsideai/pixgen-api/internal/store"
)

// PostgresFavoriteStore implements the store.FavoriteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFavoriteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFavoriteStore creates a new PostgreSQL implementation of the
// FavoriteStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresFavoriteStore(db store.DBTX, logger *slog.Logger) *PostgresFavoriteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFavoriteStore{
		db:     db,
		logger: logger.With(slog.String("component", "favorite_store")),
	}
}

// Ensure PostgresFavoriteStore implements store.FavoriteStore interface
var _ store.FavoriteStore = (*PostgresFavoriteStore)(nil)

// Add implements store.FavoriteStore.Add.
// The insert is conflict-free: ON CONFLICT DO NOTHING keeps the
// (owner, prompt) uniqueness invariant even under concurrent adds, and
// re-adding an existing favorite is a no-op rather than an error.
func (s *PostgresFavoriteStore) Add(ctx context.Context, ownerID, prompt string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fav, err := domain.NewFavoritePrompt(ownerID, prompt)
	if err != nil {
		log.Warn("favorite validation failed during add",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO favorite_prompts (owner_id, prompt, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, prompt) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query, fav.OwnerID, fav.Prompt, fav.CreatedAt)
	if err != nil {
		log.Error("failed to add favorite",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return err
	}

	log.Debug("favorite added", slog.String("owner_id", ownerID))
	return nil
}

// Remove implements store.FavoriteStore.Remove.
// Removing an absent favorite is a no-op.
func (s *PostgresFavoriteStore) Remove(ctx context.Context, ownerID, prompt string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyFavoriteOwnerID)
	}

	query := `
		DELETE FROM favorite_prompts
		WHERE owner_id = $1 AND prompt = $2
	`
	_, err := s.db.ExecContext(ctx, query, ownerID, prompt)
	if err != nil {
		log.Error("failed to remove favorite",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return err
	}

	log.Debug("favorite removed", slog.String("owner_id", ownerID))
	return nil
}

// ListByOwner implements store.FavoriteStore.ListByOwner.
// Prompts come back most recently added first.
func (s *PostgresFavoriteStore) ListByOwner(ctx context.Context, ownerID string) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT prompt
		FROM favorite_prompts
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list favorites",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	prompts := make([]string, 0)
	for rows.Next() {
		var prompt string
		if err := rows.Scan(&prompt); err != nil {
			log.Error("failed to scan favorite",
				slog.String("error", err.Error()),
				slog.String("owner_id", ownerID))
			return nil, err
		}
		prompts = append(prompts, prompt)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating favorites",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID))
		return nil, err
	}

	return prompts, nil
}
