package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/config"
	"github.com/aristath/itemsentinel/internal/database"
	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/events"
	"github.com/aristath/itemsentinel/internal/modules/analytics"
	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	"github.com/aristath/itemsentinel/internal/modules/trend"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:            t.TempDir(),
		Weights:            analytics.DefaultWeights(),
		DefaultRank:        domain.RankHigh,
		MetaAlertThreshold: 75,
		Schedules: config.Schedules{
			ScoreTrackedItems: "0 */30 * * * *",
			PortfolioHistory:  "0 0 4 * * *",
			PruneHeroStats:    "0 15 4 * * *",
			PruneItemScores:   "0 45 4 * * *",
			CheckDatabases:    "0 0 */6 * * *",
			Backup:            "0 30 3 * * *",
		},
		HeroStatsRetention: 30 * 24 * time.Hour,
		R2:                 config.R2Config{Keep: 7},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.FileExists(t, cfg.DatabasePath(database.NameMarket))
	assert.FileExists(t, cfg.DatabasePath(database.NamePortfolio))
	assert.Len(t, container.Databases(), 2)

	assert.Nil(t, container.R2BackupService)
	assert.Nil(t, jobs.R2Backup)
	assert.ElementsMatch(t,
		[]string{"score_tracked_items", "portfolio_history", "prune_hero_stats", "prune_item_scores", "check_databases"},
		container.Scheduler.Jobs())

	require.NoError(t, jobs.CheckDatabases.Run())
	require.NoError(t, jobs.PruneHeroStats.Run())
	require.NoError(t, jobs.PruneItemScores.Run())
}

func TestWire_ServicesShareStorage(t *testing.T) {
	container, jobs, err := Wire(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, container.MarketRepo.AppendPrice("key", 100, start.Add(time.Duration(i)*24*time.Hour)))
	}

	report, err := container.TrendService.Analyze("key")
	require.NoError(t, err)
	assert.Equal(t, trend.Sideways, report.Direction)

	eventsCh, unsubscribe := container.EventBus.Subscribe(events.PortfolioSnapshotSaved)
	defer unsubscribe()

	_, err = container.PortfolioService.UpsertPosition(portfolio.Position{
		ItemID:               "key",
		Quantity:             2,
		TotalInvestment:      200,
		CurrentValueAfterFee: 220,
	})
	require.NoError(t, err)
	require.NoError(t, jobs.PortfolioHistory.Run())

	select {
	case event := <-eventsCh:
		assert.Equal(t, events.PortfolioSnapshotSaved, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a portfolio snapshot event")
	}
}

func TestRegisterJobs_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	require.NoError(t, InitializeRepositories(container, zerolog.Nop()))
	require.NoError(t, InitializeServices(context.Background(), container, cfg, zerolog.Nop()))

	cfg.Schedules.PortfolioHistory = "not a schedule"
	_, err = RegisterJobs(container, cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeRepositories_RequiresDatabases(t *testing.T) {
	err := InitializeRepositories(&Container{}, zerolog.Nop())
	assert.Error(t, err)
}
