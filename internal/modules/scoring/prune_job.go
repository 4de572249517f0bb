package scoring

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultScoreRetention is used when the configured retention is not positive
const DefaultScoreRetention = 90 * 24 * time.Hour

// PruneScoresJob deletes score records older than the retention window.
// Each item's newest record survives regardless of age.
type PruneScoresJob struct {
	repo      *Repository
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewPruneScoresJob creates the prune_item_scores job
func NewPruneScoresJob(repo *Repository, retention time.Duration, log zerolog.Logger) *PruneScoresJob {
	if retention <= 0 {
		retention = DefaultScoreRetention
	}
	return &PruneScoresJob{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("job", "prune_item_scores").Logger(),
	}
}

// Name returns the job name
func (j *PruneScoresJob) Name() string {
	return "prune_item_scores"
}

// Run deletes stale score rows
func (j *PruneScoresJob) Run() error {
	deleted, err := j.repo.DeleteOlderThan(j.now().Add(-j.retention))
	if err != nil {
		j.log.Error().Err(err).Msg("Score prune failed")
		return err
	}

	j.log.Info().Int64("deleted", deleted).Msg("Item scores pruned")
	return nil
}
