package portfolio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/events"
)

// EventPublisher is the slice of the event bus the service needs
type EventPublisher interface {
	Emit(module string, data events.EventData)
}

// Service computes portfolio metrics and keeps their history.
//
// Dependencies:
//   - PositionRepository: held positions (portfolio.db)
//   - HistoryRepository: daily snapshots (portfolio.db)
//   - EventPublisher: optional, announces saved snapshots
type Service struct {
	positions *PositionRepository
	history   *HistoryRepository
	events    EventPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates a portfolio service. publisher may be nil.
func NewService(positions *PositionRepository, history *HistoryRepository, publisher EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		positions: positions,
		history:   history,
		events:    publisher,
		now:       time.Now,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// Positions returns every stored position
func (s *Service) Positions() ([]Position, error) {
	return s.positions.GetAll()
}

// UpsertPosition stamps and stores a position
func (s *Service) UpsertPosition(position Position) (Position, error) {
	position.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.positions.Upsert(position); err != nil {
		return Position{}, err
	}
	return position, nil
}

// Metrics computes the current portfolio totals
func (s *Service) Metrics() (Metrics, error) {
	positions, err := s.positions.GetAll()
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to load positions: %w", err)
	}
	return CalculateMetrics(positions), nil
}

// SaveHistory records the current metrics. It returns nil without writing anything when
// there are no stored positions.
func (s *Service) SaveHistory() (*HistoryEntry, error) {
	positions, err := s.positions.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	if len(positions) == 0 {
		s.log.Info().Msg("No positions, skipping portfolio snapshot")
		return nil, nil
	}

	entry := HistoryEntry{
		Metrics:    CalculateMetrics(positions),
		RecordedAt: s.now().UTC(),
		ID:         uuid.New().String(),
	}
	if err := s.history.Insert(entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("snapshot_id", entry.ID).
		Float64("total_current_value", entry.TotalCurrentValue).
		Float64("total_profit_percent", entry.TotalProfitPercent).
		Int("positions", entry.PositionCount).
		Msg("Portfolio snapshot saved")

	if s.events != nil {
		s.events.Emit("portfolio", &events.PortfolioSnapshotSavedData{
			SnapshotID:         entry.ID,
			TotalCurrentValue:  entry.TotalCurrentValue,
			TotalProfitPercent: entry.TotalProfitPercent,
			PositionCount:      entry.PositionCount,
		})
	}

	return &entry, nil
}

// History returns up to limit snapshots, newest first
func (s *Service) History(limit int) ([]HistoryEntry, error) {
	return s.history.List(limit)
}
