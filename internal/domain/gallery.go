package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for gallery items.
var (
	ErrEmptyGalleryItemID      = errors.New("gallery item ID cannot be empty")
	ErrEmptyGalleryItemOwnerID = errors.New("gallery item owner ID cannot be empty")
	ErrEmptyGalleryItemURL     = errors.New("gallery item URL cannot be empty")
)

// GalleryItem is the durable record of one successful generation. Items
// are append-only: created exactly once when a job resolves successfully
// and never updated afterwards.
type GalleryItem struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGalleryItem creates a new GalleryItem for the given owner and result
// URL. CreatedAt reflects the original submission time carried in the job
// snapshot; when the snapshot has none, the current time is used so gallery
// ordering stays well defined.
func NewGalleryItem(ownerID, url, prompt string, submittedAt time.Time) (*GalleryItem, error) {
	createdAt := submittedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	item := &GalleryItem{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		URL:       url,
		Prompt:    prompt,
		CreatedAt: createdAt,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the GalleryItem has valid data.
func (g *GalleryItem) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptyGalleryItemID
	}
	if g.OwnerID == "" {
		return ErrEmptyGalleryItemOwnerID
	}
	if g.URL == "" {
		return ErrEmptyGalleryItemURL
	}
	return nil
}
