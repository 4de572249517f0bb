package portfolio

import (
	"github.com/rs/zerolog"
)

// HistoryJob saves a portfolio snapshot on schedule
type HistoryJob struct {
	service *Service
	log     zerolog.Logger
}

// NewHistoryJob creates the portfolio_history job
func NewHistoryJob(service *Service, log zerolog.Logger) *HistoryJob {
	return &HistoryJob{
		service: service,
		log:     log.With().Str("job", "portfolio_history").Logger(),
	}
}

// Name returns the job name
func (j *HistoryJob) Name() string {
	return "portfolio_history"
}

// Run saves the snapshot
func (j *HistoryJob) Run() error {
	if _, err := j.service.SaveHistory(); err != nil {
		j.log.Error().Err(err).Msg("Portfolio snapshot failed")
		return err
	}
	return nil
}
