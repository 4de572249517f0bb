package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ScoreTrackedItemsJob scores every tracked item on schedule
type ScoreTrackedItemsJob struct {
	service *Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewScoreTrackedItemsJob creates the score_tracked_items job
func NewScoreTrackedItemsJob(service *Service, timeout time.Duration, log zerolog.Logger) *ScoreTrackedItemsJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ScoreTrackedItemsJob{
		service: service,
		timeout: timeout,
		log:     log.With().Str("job", "score_tracked_items").Logger(),
	}
}

// Name returns the job name
func (j *ScoreTrackedItemsJob) Name() string {
	return "score_tracked_items"
}

// Run scores all tracked items
func (j *ScoreTrackedItemsJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.service.ScoreAll(ctx); err != nil {
		j.log.Error().Err(err).Msg("Scoring run failed")
		return err
	}
	return nil
}
