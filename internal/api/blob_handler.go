package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xsideai/pixgen-api/internal/api/shared"
	"github.com/xsideai/pixgen-api/internal/blob"
)

// BlobHandler serves staged image bytes to the external worker.
type BlobHandler struct {
	blobs *blob.Store
}

// NewBlobHandler creates a new BlobHandler.
func NewBlobHandler(blobs *blob.Store) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

// GetImage handles GET /api/image/{id} requests. Handles are ephemeral:
// once the retention window lapses the bytes are gone and the handle
// answers 404 permanently.
func (h *BlobHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing image id")
		return
	}

	data, mime, err := h.blobs.Get(id)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Image not found or expired")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to read image", err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write image response", "error", err)
	}
}
