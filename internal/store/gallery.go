package store

import (
	"context"

	"github.com/xsideai/pixgen-api/internal/domain"
)

// GalleryStore defines the interface for durable, per-user gallery
// persistence. The gallery is append-only: items are created exactly once
// when a generation job resolves successfully and are never updated.
type GalleryStore interface {
	// Append saves a new gallery item to the store.
	// The item must be valid according to domain validation rules.
	// Returns ErrInvalidEntity wrapped around the validation error if the
	// item data is invalid.
	Append(ctx context.Context, item *domain.GalleryItem) error

	// ListByOwner retrieves all gallery items belonging to the given owner,
	// newest first. An unknown owner yields an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.GalleryItem, error)
}
