package trend

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/pkg/formulas"
)

// DefaultHistoryLimit is how many price points an analysis reads by default
const DefaultHistoryLimit = 90

// ErrNoHistory is returned for items without any recorded price
var ErrNoHistory = errors.New("no price history for item")

// HistoryProvider supplies dated price history, oldest first
type HistoryProvider interface {
	GetDatedHistory(itemID string, limit int) ([]domain.PricePoint, error)
}

// Report is the trend analysis of one item
type Report struct {
	Result     `msgpack:",inline"`
	ItemID     string    `json:"item_id" msgpack:"item_id"`
	From       time.Time `json:"from" msgpack:"from"`
	To         time.Time `json:"to" msgpack:"to"`
	Points     int       `json:"points" msgpack:"points"`
	Latest     float64   `json:"latest" msgpack:"latest"`
	Min        float64   `json:"min" msgpack:"min"`
	Max        float64   `json:"max" msgpack:"max"`
	MeanPrice  float64   `json:"mean" msgpack:"mean"`
	StdDev     float64   `json:"std_dev" msgpack:"std_dev"`
	AnalyzedAt time.Time `json:"analyzed_at" msgpack:"analyzed_at"`
}

// Service analyzes stored price history
type Service struct {
	history HistoryProvider
	limit   int
	log     zerolog.Logger
}

// NewService creates a trend service reading at most limit points per item
func NewService(history HistoryProvider, limit int, log zerolog.Logger) *Service {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Service{
		history: history,
		limit:   limit,
		log:     log.With().Str("service", "trend").Logger(),
	}
}

// Analyze builds the trend report of an item
func (s *Service) Analyze(itemID string) (*Report, error) {
	points, err := s.history.GetDatedHistory(itemID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for %s: %w", itemID, err)
	}
	if len(points) == 0 {
		return nil, ErrNoHistory
	}

	prices := make([]float64, len(points))
	dates := make([]time.Time, len(points))
	for i, p := range points {
		prices[i] = p.Price
		dates[i] = p.RecordedAt
	}

	minPrice, maxPrice := formulas.MinMax(prices)
	report := &Report{
		Result:     Analyze(prices, dates),
		ItemID:     itemID,
		From:       dates[0],
		To:         dates[len(dates)-1],
		Points:     len(points),
		Latest:     prices[len(prices)-1],
		Min:        minPrice,
		Max:        maxPrice,
		MeanPrice:  formulas.Mean(prices),
		StdDev:     formulas.PopStdDev(prices),
		AnalyzedAt: time.Now().UTC(),
	}

	s.log.Debug().
		Str("item_id", itemID).
		Str("direction", string(report.Direction)).
		Int("points", report.Points).
		Msg("Analyzed price trend")

	return report, nil
}
