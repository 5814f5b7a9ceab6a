package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/xsideai/pixgen-api/internal/api/shared"
	"github.com/xsideai/pixgen-api/internal/store"
)

// FavoritesHandler serves favorite-prompt reads and mutations.
type FavoritesHandler struct {
	favorites store.FavoriteStore
	validator *validator.Validate
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(favorites store.FavoriteStore) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites,
		validator: validator.New(),
	}
}

// ListFavorites handles GET /api/favorites?userId= requests.
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		shared.RespondWithJSON(w, r, http.StatusOK, []string{})
		return
	}

	h.respondWithList(w, r, userID)
}

// AddFavorite handles POST /api/favorites requests. Re-adding a saved
// prompt is a no-op; the response is the resulting full list either way.
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Add(r.Context(), req.UserID, req.Prompt); err != nil {
		slog.Error("Failed to add favorite", "error", err, "user_id", req.UserID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.respondWithList(w, r, req.UserID)
}

// RemoveFavorite handles DELETE /api/favorites requests. Removing an
// absent prompt is a no-op.
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), req.UserID, req.Prompt); err != nil {
		slog.Error("Failed to remove favorite", "error", err, "user_id", req.UserID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.respondWithList(w, r, req.UserID)
}

// decode parses and validates a favorite mutation request, writing the
// error response itself when the payload is unusable.
func (h *FavoritesHandler) decode(w http.ResponseWriter, r *http.Request) (FavoriteRequest, bool) {
	var req FavoriteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing userId or prompt")
		return req, false
	}
	return req, true
}

// respondWithList answers with the owner's current favorites.
func (h *FavoritesHandler) respondWithList(w http.ResponseWriter, r *http.Request, userID string) {
	prompts, err := h.favorites.ListByOwner(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list favorites", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, prompts)
}
