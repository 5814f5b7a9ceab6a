package api

import (
	"log/slog"
	"net/http"

	"github.com/xsideai/pixgen-api/internal/api/shared"
	"github.com/xsideai/pixgen-api/internal/store"
)

// GalleryHandler serves per-user gallery reads.
type GalleryHandler struct {
	gallery store.GalleryStore
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery store.GalleryStore) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// ListGallery handles GET /api/gallery?userId= requests. An empty owner id
// yields an empty list, not an error.
func (h *GalleryHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		shared.RespondWithJSON(w, r, http.StatusOK, []*GalleryItemResponse{})
		return
	}

	items, err := h.gallery.ListByOwner(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list gallery", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := make([]*GalleryItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, galleryItemToDTO(item))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
