package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/metrics", h.HandleGetMetrics) // Current totals

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.HandleGetHistory)   // Snapshots, newest first
			r.Post("/", h.HandleSaveHistory) // Record a snapshot now
		})

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", h.HandleGetPositions)
			r.Put("/{itemID}", h.HandleUpsertPosition)
		})
	})
}
