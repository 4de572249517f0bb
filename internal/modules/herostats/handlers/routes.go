package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the hero stats routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/heroes/{heroID}/stats", func(r chi.Router) {
		r.Get("/", h.HandleGetStats)    // Newest record, ?rank= selects the bracket
		r.Post("/", h.HandleStoreStats) // Ingest a record
	})
}
