package analytics

import (
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
)

// Engine composes the metric functions into hero, investment and buyback scores.
// It holds only read-only configuration and is safe for concurrent use.
type Engine struct {
	weights   WeightConfig
	heroStats domain.HeroStatsProvider
	log       zerolog.Logger
}

// NewEngine creates a scoring engine. heroStats may be nil, in which case every
// hero-dependent term falls back to its neutral value.
func NewEngine(weights WeightConfig, heroStats domain.HeroStatsProvider, log zerolog.Logger) *Engine {
	return &Engine{
		weights:   weights.Clone(),
		heroStats: heroStats,
		log:       log.With().Str("module", "analytics").Logger(),
	}
}

// Weights returns a copy of the engine's weight configuration
func (e *Engine) Weights() WeightConfig {
	return e.weights.Clone()
}

// hasHeroContext reports whether hero statistics can be looked up at all
func (e *Engine) hasHeroContext(heroID int, rank domain.RankCategory) bool {
	return heroID > 0 && rank != "" && e.heroStats != nil
}
