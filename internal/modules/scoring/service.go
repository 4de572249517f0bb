package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/events"
	"github.com/aristath/itemsentinel/internal/modules/analytics"
)

// EventPublisher is the slice of the event bus the service needs
type EventPublisher interface {
	Emit(module string, data events.EventData)
}

// Config tunes the scoring service
type Config struct {
	DefaultRank        domain.RankCategory // used for hero items stored without a rank
	MetaAlertThreshold int                 // meta signal at or above this publishes an alert
	HistoryLimit       int                 // price points fed to the volatility index
}

// Service scores tracked items with the analytics engine
type Service struct {
	engine *analytics.Engine
	market domain.MarketDataProvider
	items  domain.TrackedItemProvider
	repo   *Repository
	events EventPublisher
	cfg    Config
	log    zerolog.Logger
}

// NewService creates a scoring service. events may be nil.
func NewService(
	engine *analytics.Engine,
	market domain.MarketDataProvider,
	items domain.TrackedItemProvider,
	repo *Repository,
	publisher EventPublisher,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.DefaultRank == "" {
		cfg.DefaultRank = domain.RankHigh
	}
	if cfg.MetaAlertThreshold <= 0 {
		cfg.MetaAlertThreshold = 75
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 30
	}

	return &Service{
		engine: engine,
		market: market,
		items:  items,
		repo:   repo,
		events: publisher,
		cfg:    cfg,
		log:    log.With().Str("service", "scoring").Logger(),
	}
}

// Engine exposes the underlying engine for stateless scoring endpoints
func (s *Service) Engine() *analytics.Engine {
	return s.engine
}

// DefaultRank returns the rank category used when none is given
func (s *Service) DefaultRank() domain.RankCategory {
	return s.cfg.DefaultRank
}

// ScoreItem computes and stores the investment score of a tracked item
func (s *Service) ScoreItem(ctx context.Context, itemID string) (*ScoreRecord, error) {
	return s.score(ctx, uuid.NewString(), itemID, nil)
}

// ScoreBuyback scores a tracked item for buying back after selling at sellPrice.
// A non-positive currentPrice is taken from the stored snapshot (latest sell, then latest).
func (s *Service) ScoreBuyback(ctx context.Context, itemID string, sellPrice, currentPrice float64) (*ScoreRecord, error) {
	if !(sellPrice > 0) {
		return nil, fmt.Errorf("sell price must be positive, got %v", sellPrice)
	}
	return s.score(ctx, uuid.NewString(), itemID, &buybackRequest{sellPrice: sellPrice, currentPrice: currentPrice})
}

// ScoreAll scores every tracked item under one run id. Per-item failures are logged and
// reported in the summary; only listing failures and cancellation abort the run.
func (s *Service) ScoreAll(ctx context.Context) (*RunSummary, error) {
	items, err := s.items.ListTrackedItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked items: %w", err)
	}

	summary := &RunSummary{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		record, err := s.score(ctx, summary.RunID, item.ItemID, nil)
		if err != nil {
			s.log.Error().Err(err).Str("item_id", item.ItemID).Msg("Failed to score item")
			summary.Failed = append(summary.Failed, item.ItemID)
			continue
		}

		summary.Scored++
		if record.MetaSignal >= s.cfg.MetaAlertThreshold {
			summary.Alerts++
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	s.log.Info().
		Str("run_id", summary.RunID).
		Int("scored", summary.Scored).
		Int("failed", len(summary.Failed)).
		Int("alerts", summary.Alerts).
		Dur("duration", summary.Duration).
		Msg("Scoring run completed")

	return summary, nil
}

// LatestScore returns the newest stored score for an item, or nil if never scored
func (s *Service) LatestScore(itemID string) (*ScoreRecord, error) {
	return s.repo.Latest(itemID)
}

// RankItems returns the newest score of every item, best investment first
func (s *Service) RankItems(limit int) ([]ScoreRecord, error) {
	return s.repo.Rankings(limit)
}

type buybackRequest struct {
	sellPrice    float64
	currentPrice float64
}

func (s *Service) score(ctx context.Context, runID, itemID string, buyback *buybackRequest) (*ScoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	item, err := s.items.GetTrackedItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked item %s: %w", itemID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotTracked, itemID)
	}

	snapshot, err := s.market.GetSnapshot(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", itemID, err)
	}
	if snapshot == nil {
		s.log.Debug().Str("item_id", itemID).Msg("No market snapshot, scoring neutral")
	}

	history, err := s.market.GetPriceHistory(itemID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history for %s: %w", itemID, err)
	}

	rank := item.Rank
	if rank == "" {
		rank = s.cfg.DefaultRank
	}

	result := s.engine.EvaluateInvestment(analytics.InvestmentInput{
		Item:     snapshot,
		History:  history,
		Category: item.Category,
		HeroID:   item.HeroID,
		Rank:     rank,
	})

	record := &ScoreRecord{
		RunID:           runID,
		ItemID:          itemID,
		InvestmentScore: result.Score,
		RiskLevel:       result.Risk,
		Components:      result.Components,
		Bonuses:         result.Bonuses,
	}

	if item.Category == domain.ItemCategoryHero && item.HeroID > 0 {
		record.MetaSignal = s.engine.MetaSignal(item.HeroID, rank)
	}

	var buybackComponents map[string]float64
	if buyback != nil {
		current := buyback.currentPrice
		if !(current > 0) {
			current = currentPrice(snapshot)
		}

		bb := s.engine.EvaluateBuyback(analytics.BuybackInput{
			Item:         snapshot,
			History:      history,
			SellPrice:    buyback.sellPrice,
			CurrentPrice: current,
			HeroID:       item.HeroID,
			Rank:         rank,
		})
		record.BuybackScore = &bb.Score
		buybackComponents = bb.Components
	}

	if err := s.repo.Save(record, buybackComponents); err != nil {
		return nil, err
	}

	s.publish(record, item, rank)

	return record, nil
}

func (s *Service) publish(record *ScoreRecord, item *domain.TrackedItem, rank domain.RankCategory) {
	if s.events == nil {
		return
	}

	s.events.Emit("scoring", &events.ScoreComputedData{
		RunID:           record.RunID,
		ItemID:          record.ItemID,
		InvestmentScore: record.InvestmentScore,
		BuybackScore:    record.BuybackScore,
		MetaSignal:      record.MetaSignal,
		RiskLevel:       string(record.RiskLevel),
		Bonuses:         record.Bonuses,
	})

	if record.MetaSignal >= s.cfg.MetaAlertThreshold {
		s.log.Info().
			Str("item_id", record.ItemID).
			Int("hero_id", item.HeroID).
			Int("meta_signal", record.MetaSignal).
			Msg("Meta signal alert")

		s.events.Emit("scoring", &events.MetaSignalAlertData{
			ItemID:     record.ItemID,
			HeroID:     item.HeroID,
			Rank:       string(rank),
			MetaSignal: record.MetaSignal,
			Threshold:  s.cfg.MetaAlertThreshold,
		})
	}
}

// currentPrice picks the market price used for buybacks when none is supplied
func currentPrice(snapshot *domain.ItemMarketSnapshot) float64 {
	if snapshot == nil {
		return 0
	}
	for _, p := range []*float64{snapshot.PriceLatestSell, snapshot.PriceLatest} {
		if p != nil && *p > 0 {
			return *p
		}
	}
	return 0
}
