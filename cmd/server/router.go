package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xsideai/pixgen-api/internal/api"
	apiMiddleware "github.com/xsideai/pixgen-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	generateHandler := api.NewGenerateHandler(app.submitter, app.config.Blob.MaxBytes)
	callbackHandler := api.NewCallbackHandler(app.reconciler)
	statusHandler := api.NewStatusHandler(app.status)
	galleryHandler := api.NewGalleryHandler(app.galleryStore)
	favoritesHandler := api.NewFavoritesHandler(app.favoriteStore)
	blobHandler := api.NewBlobHandler(app.blobs)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", generateHandler.Generate)
		r.Post("/callback", callbackHandler.Callback)
		r.Get("/task/{taskID}", statusHandler.TaskStatus)

		r.Get("/gallery", galleryHandler.ListGallery)

		r.Get("/favorites", favoritesHandler.ListFavorites)
		r.Post("/favorites", favoritesHandler.AddFavorite)
		r.Delete("/favorites", favoritesHandler.RemoveFavorite)

		r.Get("/image/{id}", blobHandler.GetImage)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
