package api

import (
	"errors"
	"net/http"

	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/generation"
	"github.com/xsideai/pixgen-api/internal/job"
	"github.com/xsideai/pixgen-api/internal/store"
	"github.com/xsideai/pixgen-api/internal/worker"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This keeps status-code policy in one
// place instead of scattered across handlers.
func MapErrorToStatusCode(err error) int {
	var upstreamErr *worker.UpstreamError

	switch {
	// Validation errors: surfaced immediately, never retried.
	case errors.Is(err, domain.ErrEmptyPrompt),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, generation.ErrUnknownProfile),
		errors.Is(err, generation.ErrImagesRequired),
		errors.Is(err, generation.ErrImagesNotAllowed),
		errors.Is(err, generation.ErrTooManyImages),
		errors.Is(err, job.ErrMissingJobID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Upstream rejection or unreachability at submission time.
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Default: internal server error (includes storage failures).
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the error message appropriate for clients.
// Validation errors and upstream diagnostics pass through, since callers
// need the upstream's original text to decide whether to retry, while unknown
// internal errors collapse to a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var upstreamErr *worker.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Message
	}

	switch {
	case errors.Is(err, domain.ErrEmptyPrompt):
		return "Missing or invalid prompt"
	case errors.Is(err, generation.ErrUnknownProfile),
		errors.Is(err, generation.ErrImagesRequired),
		errors.Is(err, generation.ErrImagesNotAllowed),
		errors.Is(err, generation.ErrTooManyImages):
		return err.Error()
	case errors.Is(err, job.ErrMissingJobID):
		return "Missing taskId"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case store.IsNotFoundError(err):
		return "Not found"
	default:
		return "An unexpected error occurred"
	}
}
