// Package handlers provides HTTP handlers for tracked items and their market data.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/modules/market"
	"github.com/aristath/itemsentinel/pkg/render"
)

// Handler handles market data HTTP requests
type Handler struct {
	repo *market.Repository
	log  zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(repo *market.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "market").Logger(),
	}
}

// ItemRequest is the body of PUT /api/market/items/{itemID}.
// Snapshot is optional; when present it replaces the stored snapshot.
type ItemRequest struct {
	Name     string                     `json:"name"`
	Category domain.ItemCategory        `json:"category"`
	HeroID   int                        `json:"hero_id,omitempty"`
	Rank     domain.RankCategory        `json:"rank_category,omitempty"`
	Snapshot *domain.ItemMarketSnapshot `json:"snapshot,omitempty"`
}

// ItemResponse is a tracked item with its latest snapshot
type ItemResponse struct {
	Item     *domain.TrackedItem        `json:"item,omitempty" msgpack:"item,omitempty"`
	Snapshot *domain.ItemMarketSnapshot `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`
}

// PricesRequest is the body of POST /api/market/items/{itemID}/prices
type PricesRequest struct {
	Prices []domain.PricePoint `json:"prices"`
}

func (req ItemRequest) validate(itemID string) error {
	if !req.Category.Valid() {
		return fmt.Errorf("invalid item category %q", req.Category)
	}
	if req.Rank != "" && !req.Rank.Valid() {
		return fmt.Errorf("invalid rank category %q", req.Rank)
	}
	if req.HeroID < 0 {
		return fmt.Errorf("invalid hero id %d", req.HeroID)
	}
	if req.Snapshot != nil && req.Snapshot.ItemID != "" && req.Snapshot.ItemID != itemID {
		return fmt.Errorf("snapshot item id %q does not match %q", req.Snapshot.ItemID, itemID)
	}
	return nil
}

// HandleListItems returns every tracked item
func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListTrackedItems()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list tracked items")
		render.Error(w, r, http.StatusInternalServerError, "failed to list items", h.log)
		return
	}
	if items == nil {
		items = []domain.TrackedItem{}
	}

	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	}, h.log)
}

// HandleGetItem handles GET /api/market/items/{itemID}
func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	item, err := h.repo.GetTrackedItem(itemID)
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to get tracked item")
		render.Error(w, r, http.StatusInternalServerError, "failed to get item", h.log)
		return
	}
	snapshot, err := h.repo.GetSnapshot(itemID)
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to get snapshot")
		render.Error(w, r, http.StatusInternalServerError, "failed to get item", h.log)
		return
	}
	if item == nil && snapshot == nil {
		render.Error(w, r, http.StatusNotFound, "item not found", h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, ItemResponse{Item: item, Snapshot: snapshot}, h.log)
}

// HandleUpsertItem handles PUT /api/market/items/{itemID}
func (h *Handler) HandleUpsertItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req ItemRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}
	if err := req.validate(itemID); err != nil {
		render.Error(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	item := domain.TrackedItem{
		ItemID:   itemID,
		Name:     req.Name,
		Category: req.Category,
		HeroID:   req.HeroID,
		Rank:     req.Rank,
	}
	if err := h.repo.UpsertTrackedItem(item); err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to store tracked item")
		render.Error(w, r, http.StatusInternalServerError, "failed to store item", h.log)
		return
	}

	if req.Snapshot != nil {
		req.Snapshot.ItemID = itemID
		if err := h.repo.UpsertSnapshot(*req.Snapshot); err != nil {
			h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to store snapshot")
			render.Error(w, r, http.StatusInternalServerError, "failed to store snapshot", h.log)
			return
		}
	}

	snapshot, err := h.repo.GetSnapshot(itemID)
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to reload snapshot")
		render.Error(w, r, http.StatusInternalServerError, "failed to get item", h.log)
		return
	}

	h.log.Debug().Str("item_id", itemID).Bool("snapshot", req.Snapshot != nil).Msg("Tracked item stored")
	render.Respond(w, r, http.StatusOK, ItemResponse{Item: &item, Snapshot: snapshot}, h.log)
}

// HandleDeleteItem stops tracking an item. Its market data is kept.
func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := h.repo.DeleteTrackedItem(itemID); err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to delete tracked item")
		render.Error(w, r, http.StatusInternalServerError, "failed to delete item", h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAppendPrices handles POST /api/market/items/{itemID}/prices.
// The batch is rejected as a whole if any price is invalid.
func (h *Handler) HandleAppendPrices(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req PricesRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}
	if len(req.Prices) == 0 {
		render.Error(w, r, http.StatusBadRequest, "no prices given", h.log)
		return
	}
	for i, point := range req.Prices {
		if !(point.Price > 0) {
			render.Error(w, r, http.StatusBadRequest,
				fmt.Sprintf("prices[%d]: %v", i, market.ErrInvalidPrice), h.log)
			return
		}
	}

	now := time.Now()
	for _, point := range req.Prices {
		recordedAt := point.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = now
		}
		if err := h.repo.AppendPrice(itemID, point.Price, recordedAt); err != nil {
			if errors.Is(err, market.ErrInvalidPrice) {
				render.Error(w, r, http.StatusBadRequest, err.Error(), h.log)
				return
			}
			h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to append price")
			render.Error(w, r, http.StatusInternalServerError, "failed to append prices", h.log)
			return
		}
	}

	render.Respond(w, r, http.StatusCreated, map[string]interface{}{
		"item_id":  itemID,
		"appended": len(req.Prices),
	}, h.log)
}

// HandleGetPrices returns dated price history, oldest first
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	limit := market.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			render.Error(w, r, http.StatusBadRequest, "invalid limit", h.log)
			return
		}
		limit = parsed
	}

	points, err := h.repo.GetDatedHistory(itemID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to get price history")
		render.Error(w, r, http.StatusInternalServerError, "failed to get prices", h.log)
		return
	}
	if points == nil {
		points = []domain.PricePoint{}
	}

	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"item_id": itemID,
		"prices":  points,
		"count":   len(points),
	}, h.log)
}
