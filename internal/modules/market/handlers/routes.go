package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market/items", func(r chi.Router) {
		r.Get("/", h.HandleListItems) // Tracked items

		r.Route("/{itemID}", func(r chi.Router) {
			r.Get("/", h.HandleGetItem)
			r.Put("/", h.HandleUpsertItem) // Metadata plus optional snapshot
			r.Delete("/", h.HandleDeleteItem)

			r.Get("/prices", h.HandleGetPrices)
			r.Post("/prices", h.HandleAppendPrices)
		})
	})
}
