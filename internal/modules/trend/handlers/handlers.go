// Package handlers provides HTTP handlers for price trend analysis.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/modules/trend"
	"github.com/aristath/itemsentinel/pkg/render"
)

// Handlers serves /trend
type Handlers struct {
	service *trend.Service
	log     zerolog.Logger
}

// NewHandlers creates trend handlers
func NewHandlers(service *trend.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "trend").Logger(),
	}
}

// RegisterRoutes registers trend routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/trend", func(r chi.Router) {
		r.Get("/items/{itemID}", h.HandleGetItemTrend)
	})
}

// HandleGetItemTrend handles GET /api/trend/items/{itemID}
func (h *Handlers) HandleGetItemTrend(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	report, err := h.service.Analyze(itemID)
	if errors.Is(err, trend.ErrNoHistory) {
		render.Error(w, r, http.StatusNotFound, err.Error(), h.log)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to analyze trend")
		render.Error(w, r, http.StatusInternalServerError, "failed to analyze trend", h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, report, h.log)
}
