// Package scoring runs the analytics engine over tracked items, stores the results and
// announces them on the event bus.
package scoring

import (
	"errors"
	"time"

	"github.com/aristath/itemsentinel/internal/modules/analytics"
)

// ErrItemNotTracked is returned when scoring an item that is not in the tracked set
var ErrItemNotTracked = errors.New("item is not tracked")

// ScoreRecord is one persisted scoring of an item
type ScoreRecord struct {
	ComputedAt      time.Time           `json:"computed_at" msgpack:"computed_at"`
	Components      map[string]float64  `json:"components" msgpack:"components"`
	BuybackScore    *int                `json:"buyback_score,omitempty" msgpack:"buyback_score,omitempty"`
	ID              string              `json:"id" msgpack:"id"`
	RunID           string              `json:"run_id" msgpack:"run_id"`
	ItemID          string              `json:"item_id" msgpack:"item_id"`
	RiskLevel       analytics.RiskLevel `json:"risk_level" msgpack:"risk_level"`
	Bonuses         []string            `json:"bonuses,omitempty" msgpack:"bonuses,omitempty"`
	InvestmentScore int                 `json:"investment_score" msgpack:"investment_score"`
	MetaSignal      int                 `json:"meta_signal" msgpack:"meta_signal"`
}

// breakdown is the msgpack-encoded detail column of item_scores
type breakdown struct {
	Components        map[string]float64 `msgpack:"components"`
	BuybackComponents map[string]float64 `msgpack:"buyback_components,omitempty"`
	Bonuses           []string           `msgpack:"bonuses,omitempty"`
}

// RunSummary reports the outcome of scoring every tracked item
type RunSummary struct {
	StartedAt time.Time     `json:"started_at" msgpack:"started_at"`
	RunID     string        `json:"run_id" msgpack:"run_id"`
	Failed    []string      `json:"failed,omitempty" msgpack:"failed,omitempty"`
	Duration  time.Duration `json:"duration_ns" msgpack:"duration_ns"`
	Scored    int           `json:"scored" msgpack:"scored"`
	Alerts    int           `json:"alerts" msgpack:"alerts"`
}
