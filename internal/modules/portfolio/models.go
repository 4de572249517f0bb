// Package portfolio tracks held item positions and records daily portfolio snapshots.
package portfolio

import (
	"errors"
	"time"
)

// ErrInvalidPosition is returned for positions that cannot be stored
var ErrInvalidPosition = errors.New("invalid position")

// Position is one held item. Monetary values are after marketplace fees.
type Position struct {
	UpdatedAt             time.Time `json:"updated_at" msgpack:"updated_at"`
	ItemID                string    `json:"item_id" msgpack:"item_id"`
	Quantity              float64   `json:"quantity" msgpack:"quantity"`
	TotalInvestment       float64   `json:"total_investment" msgpack:"total_investment"`
	CurrentValueAfterFee  float64   `json:"current_value_after_fee" msgpack:"current_value_after_fee"`
	Profit                float64   `json:"profit" msgpack:"profit"`
	ProfitPercentAfterFee float64   `json:"profit_percent_after_fee" msgpack:"profit_percent_after_fee"` // fraction, 0.1 = 10%
}

// Metrics are the portfolio totals over positions with a positive quantity
type Metrics struct {
	TotalInvestment    float64 `json:"total_investment" msgpack:"total_investment"`
	TotalCurrentValue  float64 `json:"total_current_value" msgpack:"total_current_value"`
	TotalProfit        float64 `json:"total_profit" msgpack:"total_profit"`
	TotalProfitPercent float64 `json:"total_profit_percent" msgpack:"total_profit_percent"`
	AvgProfitability   float64 `json:"avg_profitability" msgpack:"avg_profitability"`
	PositionCount      int     `json:"position_count" msgpack:"position_count"`
}

// HistoryEntry is a stored Metrics snapshot
type HistoryEntry struct {
	Metrics    `msgpack:",inline"`
	RecordedAt time.Time `json:"recorded_at" msgpack:"recorded_at"`
	ID         string    `json:"id" msgpack:"id"`
}

// CalculateMetrics aggregates positions. Positions with quantity <= 0 are skipped.
// TotalProfitPercent is current value over investment minus one, 0 without investment.
// AvgProfitability is the plain mean of the counted positions' profit percents.
func CalculateMetrics(positions []Position) Metrics {
	var m Metrics
	var sumProfitPercent float64

	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		m.TotalInvestment += p.TotalInvestment
		m.TotalCurrentValue += p.CurrentValueAfterFee
		m.TotalProfit += p.Profit
		sumProfitPercent += p.ProfitPercentAfterFee
		m.PositionCount++
	}

	if m.TotalInvestment > 0 {
		m.TotalProfitPercent = m.TotalCurrentValue/m.TotalInvestment - 1
	}
	if m.PositionCount > 0 {
		m.AvgProfitability = sumProfitPercent / float64(m.PositionCount)
	}

	return m
}
