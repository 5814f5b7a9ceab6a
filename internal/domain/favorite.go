package domain

import (
	"errors"
	"time"
)

// Common validation errors for favorite prompts.
var (
	ErrEmptyFavoriteOwnerID = errors.New("favorite owner ID cannot be empty")
	ErrEmptyFavoritePrompt  = errors.New("favorite prompt cannot be empty")
)

// FavoritePrompt is a prompt string a user has saved for reuse. At most one
// entry exists per (owner, prompt) pair; adds and removes are idempotent.
type FavoritePrompt struct {
	OwnerID   string    `json:"owner_id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFavoritePrompt creates a new FavoritePrompt for the given owner.
func NewFavoritePrompt(ownerID, prompt string) (*FavoritePrompt, error) {
	fav := &FavoritePrompt{
		OwnerID:   ownerID,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}

	if err := fav.Validate(); err != nil {
		return nil, err
	}

	return fav, nil
}

// Validate checks if the FavoritePrompt has valid data.
func (f *FavoritePrompt) Validate() error {
	if f.OwnerID == "" {
		return ErrEmptyFavoriteOwnerID
	}
	if f.Prompt == "" {
		return ErrEmptyFavoritePrompt
	}
	return nil
}
