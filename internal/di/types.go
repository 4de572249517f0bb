// Package di wires databases, repositories, services and jobs into a Container.
package di

import (
	"github.com/aristath/itemsentinel/internal/database"
	"github.com/aristath/itemsentinel/internal/events"
	"github.com/aristath/itemsentinel/internal/modules/analytics"
	"github.com/aristath/itemsentinel/internal/modules/herostats"
	"github.com/aristath/itemsentinel/internal/modules/market"
	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	"github.com/aristath/itemsentinel/internal/modules/scoring"
	"github.com/aristath/itemsentinel/internal/modules/trend"
	"github.com/aristath/itemsentinel/internal/reliability"
	"github.com/aristath/itemsentinel/internal/scheduler"
)

// Container holds every application dependency. It is built by Wire.
type Container struct {
	// Databases
	MarketDB    *database.DB
	PortfolioDB *database.DB

	EventBus *events.Bus

	// Repositories
	MarketRepo        *market.Repository
	HeroStatsRepo     *herostats.Repository
	ScoreRepo         *scoring.Repository
	PositionRepo      *portfolio.PositionRepository
	PortfolioHistRepo *portfolio.HistoryRepository

	// Services
	Engine           *analytics.Engine
	ScoringService   *scoring.Service
	TrendService     *trend.Service
	PortfolioService *portfolio.Service
	BackupService    *reliability.BackupService
	R2BackupService  *reliability.R2BackupService // nil unless R2 is configured

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.MarketDB != nil {
		dbs[database.NameMarket] = c.MarketDB
	}
	if c.PortfolioDB != nil {
		dbs[database.NamePortfolio] = c.PortfolioDB
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() {
	for _, db := range c.Databases() {
		_ = db.Close()
	}
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	ScoreTrackedItems scheduler.Job
	PortfolioHistory  scheduler.Job
	PruneHeroStats    scheduler.Job
	PruneItemScores   scheduler.Job
	CheckDatabases    scheduler.Job
	R2Backup          scheduler.Job // nil unless R2 is configured
}
