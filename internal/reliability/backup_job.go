package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// R2BackupJob uploads a backup and prunes old ones
type R2BackupJob struct {
	service *R2BackupService
	keep    int
	timeout time.Duration
	log     zerolog.Logger
}

// NewR2BackupJob creates the r2_backup job keeping the keep newest archives
func NewR2BackupJob(service *R2BackupService, keep int, timeout time.Duration, log zerolog.Logger) *R2BackupJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &R2BackupJob{
		service: service,
		keep:    keep,
		timeout: timeout,
		log:     log.With().Str("job", "r2_backup").Logger(),
	}
}

// Name returns the job name
func (j *R2BackupJob) Name() string {
	return "r2_backup"
}

// Run uploads a fresh backup, then prunes. A failed prune does not fail the job.
func (j *R2BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	info, err := j.service.CreateAndUpload(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("R2 backup failed")
		return err
	}

	pruned, err := j.service.Prune(ctx, j.keep)
	if err != nil {
		j.log.Warn().Err(err).Msg("R2 backup rotation failed")
	}

	j.service.publish(info, pruned)
	return nil
}
