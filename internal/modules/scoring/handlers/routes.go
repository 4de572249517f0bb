package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers analytics and scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	// Stateless engine access
	r.Route("/analytics", func(r chi.Router) {
		r.Post("/investment", h.HandleInvestment)
		r.Post("/buyback", h.HandleBuyback)
		r.Post("/risk", h.HandleRisk)
		r.Get("/heroes/{heroID}/meta", h.HandleHeroMeta)
		r.Get("/weights", h.HandleWeights) // Active weight sets
	})

	// Tracked item scores
	r.Route("/scoring", func(r chi.Router) {
		r.Post("/items/{itemID}", h.HandleScoreItem)
		r.Get("/items/{itemID}", h.HandleGetItemScore)
		r.Get("/rankings", h.HandleRankings)
	})
}
