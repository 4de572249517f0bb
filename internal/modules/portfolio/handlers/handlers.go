// Package handlers provides HTTP handlers for portfolio tracking.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	"github.com/aristath/itemsentinel/pkg/render"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// PositionRequest is the body of PUT /api/portfolio/positions/{itemID}
type PositionRequest struct {
	Quantity              float64 `json:"quantity"`
	TotalInvestment       float64 `json:"total_investment"`
	CurrentValueAfterFee  float64 `json:"current_value_after_fee"`
	Profit                float64 `json:"profit"`
	ProfitPercentAfterFee float64 `json:"profit_percent_after_fee"`
}

// HandleGetPositions returns every stored position
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.Positions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get positions")
		render.Error(w, r, http.StatusInternalServerError, "failed to get positions", h.log)
		return
	}
	if positions == nil {
		positions = []portfolio.Position{}
	}

	render.Respond(w, r, http.StatusOK, positions, h.log)
}

// HandleGetMetrics returns the current portfolio totals
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Metrics()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to calculate portfolio metrics")
		render.Error(w, r, http.StatusInternalServerError, "failed to calculate metrics", h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, metrics, h.log)
}

// HandleGetHistory returns stored snapshots, newest first
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := portfolio.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			render.Error(w, r, http.StatusBadRequest, "invalid limit", h.log)
			return
		}
		limit = parsed
	}

	entries, err := h.service.History(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get portfolio history")
		render.Error(w, r, http.StatusInternalServerError, "failed to get history", h.log)
		return
	}
	if entries == nil {
		entries = []portfolio.HistoryEntry{}
	}

	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	}, h.log)
}

// HandleSaveHistory records a snapshot now
func (h *Handler) HandleSaveHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.SaveHistory()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save portfolio snapshot")
		render.Error(w, r, http.StatusInternalServerError, "failed to save snapshot", h.log)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	render.Respond(w, r, http.StatusCreated, entry, h.log)
}

// HandleUpsertPosition handles PUT /api/portfolio/positions/{itemID}
func (h *Handler) HandleUpsertPosition(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req PositionRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}

	position := portfolio.Position{
		ItemID:                itemID,
		Quantity:              req.Quantity,
		TotalInvestment:       req.TotalInvestment,
		CurrentValueAfterFee:  req.CurrentValueAfterFee,
		Profit:                req.Profit,
		ProfitPercentAfterFee: req.ProfitPercentAfterFee,
	}
	stored, err := h.service.UpsertPosition(position)
	if err != nil {
		if errors.Is(err, portfolio.ErrInvalidPosition) {
			render.Error(w, r, http.StatusBadRequest, err.Error(), h.log)
			return
		}
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to store position")
		render.Error(w, r, http.StatusInternalServerError, "failed to store position", h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, stored, h.log)
}
