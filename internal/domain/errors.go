// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrEmptyPrompt is returned when a generation request carries no
	// prompt text.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidJobState is returned when a job result state is not one of
	// the known lifecycle states.
	ErrInvalidJobState = errors.New("invalid job state")
)
