// Package handlers provides HTTP handlers for item scoring and stateless analytics.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/modules/analytics"
	"github.com/aristath/itemsentinel/internal/modules/scoring"
	"github.com/aristath/itemsentinel/pkg/render"
)

// Handlers serves /analytics and /scoring
type Handlers struct {
	service *scoring.Service
	log     zerolog.Logger
}

// NewHandlers creates scoring handlers
func NewHandlers(service *scoring.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "scoring").Logger(),
	}
}

// InvestmentRequest scores a snapshot supplied by the caller
type InvestmentRequest struct {
	Item     *domain.ItemMarketSnapshot `json:"item"`
	History  []float64                  `json:"history,omitempty"`
	Category domain.ItemCategory        `json:"category"`
	HeroID   int                        `json:"hero_id,omitempty"`
	Rank     domain.RankCategory        `json:"rank_category,omitempty"`
}

// BuybackRequest scores buying back a snapshot supplied by the caller
type BuybackRequest struct {
	Item         *domain.ItemMarketSnapshot `json:"item"`
	History      []float64                  `json:"history,omitempty"`
	SellPrice    float64                    `json:"sell_price"`
	CurrentPrice float64                    `json:"current_price"`
	HeroID       int                        `json:"hero_id,omitempty"`
	Rank         domain.RankCategory        `json:"rank_category,omitempty"`
}

// RiskRequest classifies a score with its volatility and demand
type RiskRequest struct {
	Score      float64 `json:"score"`
	Volatility float64 `json:"volatility"`
	Demand     float64 `json:"demand"`
}

// ScoreItemRequest optionally turns an item scoring into a buyback scoring
type ScoreItemRequest struct {
	SellPrice    float64 `json:"sell_price,omitempty"`
	CurrentPrice float64 `json:"current_price,omitempty"`
}

// ScoreResponse wraps an engine result with its display string
type ScoreResponse struct {
	analytics.ScoreResult `msgpack:",inline"`
	Display               string `json:"display" msgpack:"display"`
}

// HandleWeights handles GET /api/analytics/weights
func (h *Handlers) HandleWeights(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, http.StatusOK, h.service.Engine().Weights(), h.log)
}

// HandleInvestment handles POST /api/analytics/investment
func (h *Handlers) HandleInvestment(w http.ResponseWriter, r *http.Request) {
	var req InvestmentRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}
	if req.Category != "" && !req.Category.Valid() {
		render.Error(w, r, http.StatusBadRequest, "invalid category", h.log)
		return
	}

	result := h.service.Engine().EvaluateInvestment(analytics.InvestmentInput{
		Item:     req.Item,
		History:  historySample(req.Item, req.History),
		Category: req.Category,
		HeroID:   req.HeroID,
		Rank:     h.rankOrDefault(req.Rank),
	})

	render.Respond(w, r, http.StatusOK, ScoreResponse{ScoreResult: result, Display: analytics.FormatScore(float64(result.Score))}, h.log)
}

// HandleBuyback handles POST /api/analytics/buyback
func (h *Handlers) HandleBuyback(w http.ResponseWriter, r *http.Request) {
	var req BuybackRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}

	result := h.service.Engine().EvaluateBuyback(analytics.BuybackInput{
		Item:         req.Item,
		History:      historySample(req.Item, req.History),
		SellPrice:    req.SellPrice,
		CurrentPrice: req.CurrentPrice,
		HeroID:       req.HeroID,
		Rank:         h.rankOrDefault(req.Rank),
	})

	render.Respond(w, r, http.StatusOK, ScoreResponse{ScoreResult: result, Display: analytics.FormatScore(float64(result.Score))}, h.log)
}

// HandleRisk handles POST /api/analytics/risk
func (h *Handlers) HandleRisk(w http.ResponseWriter, r *http.Request) {
	var req RiskRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"risk_level": analytics.CalculateRiskLevel(req.Score, req.Volatility, req.Demand),
	}, h.log)
}

// HandleHeroMeta handles GET /api/analytics/heroes/{heroID}/meta?rank=
func (h *Handlers) HandleHeroMeta(w http.ResponseWriter, r *http.Request) {
	heroID, err := strconv.Atoi(chi.URLParam(r, "heroID"))
	if err != nil || heroID <= 0 {
		render.Error(w, r, http.StatusBadRequest, "invalid hero id", h.log)
		return
	}

	rank := domain.RankCategory(r.URL.Query().Get("rank"))
	if rank != "" && !rank.Valid() {
		render.Error(w, r, http.StatusBadRequest, "invalid rank category", h.log)
		return
	}
	rank = h.rankOrDefault(rank)

	engine := h.service.Engine()
	meta := engine.MetaSignal(heroID, rank)
	trend := engine.HeroTrendScore(heroID, rank)

	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"hero_id":       heroID,
		"rank_category": rank,
		"meta_signal":   meta,
		"hero_trend":    trend,
		"display":       analytics.FormatMetaSignal(float64(meta)),
	}, h.log)
}

// HandleScoreItem handles POST /api/scoring/items/{itemID}. With a sell price in the
// body the item is also scored for buyback.
func (h *Handlers) HandleScoreItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req ScoreItemRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
			return
		}
	}

	var (
		record *scoring.ScoreRecord
		err    error
	)
	if req.SellPrice > 0 {
		record, err = h.service.ScoreBuyback(r.Context(), itemID, req.SellPrice, req.CurrentPrice)
	} else {
		record, err = h.service.ScoreItem(r.Context(), itemID)
	}
	if err != nil {
		h.writeServiceError(w, r, itemID, err)
		return
	}

	render.Respond(w, r, http.StatusOK, record, h.log)
}

// HandleGetItemScore handles GET /api/scoring/items/{itemID}
func (h *Handlers) HandleGetItemScore(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	record, err := h.service.LatestScore(itemID)
	if err != nil {
		h.writeServiceError(w, r, itemID, err)
		return
	}
	if record == nil {
		render.Error(w, r, http.StatusNotFound, "no score for item "+itemID, h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, record, h.log)
}

// HandleRankings handles GET /api/scoring/rankings?limit=
func (h *Handlers) HandleRankings(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			render.Error(w, r, http.StatusBadRequest, "invalid limit", h.log)
			return
		}
		limit = parsed
	}

	records, err := h.service.RankItems(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rank items")
		render.Error(w, r, http.StatusInternalServerError, "failed to rank items", h.log)
		return
	}
	if records == nil {
		records = []scoring.ScoreRecord{}
	}

	render.Respond(w, r, http.StatusOK, map[string]interface{}{
		"items": records,
		"count": len(records),
	}, h.log)
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, itemID string, err error) {
	if errors.Is(err, scoring.ErrItemNotTracked) {
		render.Error(w, r, http.StatusNotFound, err.Error(), h.log)
		return
	}
	h.log.Error().Err(err).Str("item_id", itemID).Msg("Scoring request failed")
	render.Error(w, r, http.StatusInternalServerError, "scoring failed", h.log)
}

func (h *Handlers) rankOrDefault(rank domain.RankCategory) domain.RankCategory {
	if rank == "" {
		return h.service.DefaultRank()
	}
	return rank
}

func historySample(item *domain.ItemMarketSnapshot, prices []float64) *domain.PriceHistorySample {
	if len(prices) == 0 {
		return nil
	}
	sample := &domain.PriceHistorySample{Prices: prices}
	if item != nil {
		sample.ItemID = item.ItemID
	}
	return sample
}
