// Package handlers provides HTTP handlers for ingesting and reading hero statistics.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/modules/herostats"
	"github.com/aristath/itemsentinel/pkg/render"
)

// Handler handles hero statistics HTTP requests
type Handler struct {
	repo        *herostats.Repository
	defaultRank domain.RankCategory
	log         zerolog.Logger
}

// NewHandler creates a new hero stats handler. defaultRank applies when a read names no rank.
func NewHandler(repo *herostats.Repository, defaultRank domain.RankCategory, log zerolog.Logger) *Handler {
	if !defaultRank.Valid() {
		defaultRank = domain.RankHigh
	}
	return &Handler{
		repo:        repo,
		defaultRank: defaultRank,
		log:         log.With().Str("handler", "hero_stats").Logger(),
	}
}

// StatsRequest is the body of POST /api/heroes/{heroID}/stats.
// The hero id comes from the path; FetchedAt defaults to now.
type StatsRequest struct {
	domain.HeroStatsRecord
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
}

func heroIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "heroID")
	heroID, err := strconv.Atoi(raw)
	if err != nil || heroID <= 0 {
		return 0, fmt.Errorf("invalid hero id %q", raw)
	}
	return heroID, nil
}

// HandleStoreStats handles POST /api/heroes/{heroID}/stats
func (h *Handler) HandleStoreStats(w http.ResponseWriter, r *http.Request) {
	heroID, err := heroIDParam(r)
	if err != nil {
		render.Error(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	var req StatsRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), h.log)
		return
	}
	if req.HeroID != 0 && req.HeroID != heroID {
		render.Error(w, r, http.StatusBadRequest,
			fmt.Sprintf("body hero id %d does not match %d", req.HeroID, heroID), h.log)
		return
	}
	if !req.RankCategory.Valid() {
		render.Error(w, r, http.StatusBadRequest,
			fmt.Sprintf("invalid rank category %q", req.RankCategory), h.log)
		return
	}

	record := req.HeroStatsRecord
	record.HeroID = heroID
	if err := h.repo.Store(record, req.FetchedAt); err != nil {
		h.log.Error().Err(err).Int("hero_id", heroID).Msg("Failed to store hero stats")
		render.Error(w, r, http.StatusInternalServerError, "failed to store hero stats", h.log)
		return
	}

	render.Respond(w, r, http.StatusCreated, record, h.log)
}

// HandleGetStats returns the newest stats for a hero. The rank query parameter
// selects the bracket.
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	heroID, err := heroIDParam(r)
	if err != nil {
		render.Error(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	rank := h.defaultRank
	if raw := r.URL.Query().Get("rank"); raw != "" {
		rank = domain.RankCategory(raw)
		if !rank.Valid() {
			render.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid rank category %q", raw), h.log)
			return
		}
	}

	record, err := h.repo.GetLatestRecord(heroID, rank)
	if err != nil {
		h.log.Error().Err(err).Int("hero_id", heroID).Msg("Failed to get hero stats")
		render.Error(w, r, http.StatusInternalServerError, "failed to get hero stats", h.log)
		return
	}
	if record == nil {
		render.Error(w, r, http.StatusNotFound, "no stats for hero", h.log)
		return
	}

	render.Respond(w, r, http.StatusOK, record, h.log)
}
