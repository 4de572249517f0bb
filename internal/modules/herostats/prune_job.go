package herostats

import (
	"time"

	"github.com/rs/zerolog"
)

// PruneJob removes hero stats older than the retention window
type PruneJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewPruneJob creates the prune_hero_stats job
func NewPruneJob(repo *Repository, retention time.Duration, log zerolog.Logger) *PruneJob {
	return &PruneJob{
		repo:      repo,
		retention: retention,
		log:       log.With().Str("job", "prune_hero_stats").Logger(),
	}
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "prune_hero_stats"
}

// Run deletes stale rows
func (j *PruneJob) Run() error {
	deleted, err := j.repo.PruneOlderThan(j.retention)
	if err != nil {
		j.log.Error().Err(err).Msg("Hero stats prune failed")
		return err
	}

	j.log.Info().Int64("deleted", deleted).Msg("Hero stats pruned")
	return nil
}
