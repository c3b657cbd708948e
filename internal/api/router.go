package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/minhhq2805/prefdash/internal/api/handlers"
	"github.com/minhhq2805/prefdash/internal/keyvalue"
	"github.com/minhhq2805/prefdash/internal/models"
	"github.com/minhhq2805/prefdash/internal/syncer"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

// NewRouter creates and configures the HTTP router with all API routes.
// The dashboard UI is an external client of this JSON API.
func NewRouter(sync *syncer.Syncer, w *wallet.Provider, store keyvalue.Store) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health(store))
		api.Get("/wallet", handlers.GetWallet(w))

		api.Get("/records", handlers.ListRecords(sync))
		api.Post("/records", handlers.SubmitRecord(sync))
		api.Get("/records/{id}/payload", handlers.OpenRecordPayload(sync))
		api.Post("/records/{id}/activate", handlers.SetRecordStatus(sync, models.StatusActive))
		api.Post("/records/{id}/deactivate", handlers.SetRecordStatus(sync, models.StatusInactive))
	})

	return r
}
