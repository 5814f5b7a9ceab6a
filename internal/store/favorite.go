package store

import "context"

// FavoriteStore defines the interface for durable favorite-prompt
// persistence. At most one entry exists per (owner, prompt) pair.
type FavoriteStore interface {
	// Add saves a favorite prompt for the owner. Adding a prompt that is
	// already saved is a no-op; the uniqueness invariant holds even under
	// concurrent adds (implementations must use a conflict-free insert).
	Add(ctx context.Context, ownerID, prompt string) error

	// Remove deletes a favorite prompt for the owner. Removing a prompt
	// that is not saved is a no-op.
	Remove(ctx context.Context, ownerID, prompt string) error

	// ListByOwner retrieves the owner's favorite prompt texts, most
	// recently added first. An unknown owner yields an empty slice.
	ListByOwner(ctx context.Context, ownerID string) ([]string, error)
}
