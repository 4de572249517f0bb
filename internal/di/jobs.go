package di

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/config"
	"github.com/aristath/itemsentinel/internal/modules/herostats"
	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	"github.com/aristath/itemsentinel/internal/modules/scoring"
	"github.com/aristath/itemsentinel/internal/reliability"
	"github.com/aristath/itemsentinel/internal/scheduler"
)

// RegisterJobs creates the scheduler and registers every background job on it.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.ScoringService == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	sched := scheduler.New(log)
	container.Scheduler = sched

	instances := &JobInstances{
		ScoreTrackedItems: scoring.NewScoreTrackedItemsJob(container.ScoringService, 10*time.Minute, log),
		PortfolioHistory:  portfolio.NewHistoryJob(container.PortfolioService, log),
		PruneHeroStats:    herostats.NewPruneJob(container.HeroStatsRepo, cfg.HeroStatsRetention, log),
		PruneItemScores:   scoring.NewPruneScoresJob(container.ScoreRepo, cfg.ItemScoreRetention, log),
		CheckDatabases:    scheduler.NewCheckDatabasesJob(container.Databases(), log),
	}

	schedules := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Schedules.ScoreTrackedItems, instances.ScoreTrackedItems},
		{cfg.Schedules.PortfolioHistory, instances.PortfolioHistory},
		{cfg.Schedules.PruneHeroStats, instances.PruneHeroStats},
		{cfg.Schedules.PruneItemScores, instances.PruneItemScores},
		{cfg.Schedules.CheckDatabases, instances.CheckDatabases},
	}

	if container.R2BackupService != nil {
		instances.R2Backup = reliability.NewR2BackupJob(container.R2BackupService, cfg.R2.Keep, 0, log)
		schedules = append(schedules, struct {
			schedule string
			job      scheduler.Job
		}{cfg.Schedules.Backup, instances.R2Backup})
	}

	for _, s := range schedules {
		if err := sched.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", s.job.Name(), err)
		}
	}

	log.Info().Int("jobs", len(schedules)).Msg("Jobs registered")
	return instances, nil
}
