package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/config"
	"github.com/aristath/itemsentinel/internal/events"
	"github.com/aristath/itemsentinel/internal/modules/analytics"
	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	"github.com/aristath/itemsentinel/internal/modules/scoring"
	"github.com/aristath/itemsentinel/internal/modules/trend"
	"github.com/aristath/itemsentinel/internal/reliability"
)

// InitializeServices creates the event bus, the analytics engine and every service
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.MarketRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	container.EventBus = events.NewBus(log)

	// The engine reads hero stats straight from storage
	container.Engine = analytics.NewEngine(cfg.Weights, container.HeroStatsRepo, log)

	container.ScoringService = scoring.NewService(
		container.Engine,
		container.MarketRepo,
		container.MarketRepo,
		container.ScoreRepo,
		container.EventBus,
		scoring.Config{
			DefaultRank:        cfg.DefaultRank,
			MetaAlertThreshold: cfg.MetaAlertThreshold,
		},
		log,
	)

	container.TrendService = trend.NewService(container.MarketRepo, trend.DefaultHistoryLimit, log)

	container.PortfolioService = portfolio.NewService(
		container.PositionRepo,
		container.PortfolioHistRepo,
		container.EventBus,
		log,
	)

	container.BackupService = reliability.NewBackupService(container.Databases(), log)

	if cfg.R2.Enabled() {
		client, err := reliability.NewR2Client(ctx, reliability.R2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			Bucket:          cfg.R2.Bucket,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create R2 client: %w", err)
		}
		container.R2BackupService = reliability.NewR2BackupService(
			client,
			container.BackupService,
			container.EventBus,
			cfg.DataDir,
			log,
		)
	} else {
		log.Info().Msg("R2 backups disabled (credentials not configured)")
	}

	log.Debug().Msg("Services initialized")
	return nil
}
