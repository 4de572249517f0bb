package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/database"
)

// walWarnFrames is the WAL size, in frames, above which a checkpoint is forced
const walWarnFrames = 1000

// CheckDatabasesJob verifies the integrity of every database and keeps their WAL files small
type CheckDatabasesJob struct {
	databases map[string]*database.DB
	timeout   time.Duration
	log       zerolog.Logger
}

// NewCheckDatabasesJob creates the check_databases job
func NewCheckDatabasesJob(databases map[string]*database.DB, log zerolog.Logger) *CheckDatabasesJob {
	return &CheckDatabasesJob{
		databases: databases,
		timeout:   time.Minute,
		log:       log.With().Str("job", "check_databases").Logger(),
	}
}

// Name returns the job name
func (j *CheckDatabasesJob) Name() string {
	return "check_databases"
}

// Run checks each database. Corruption fails the job; WAL problems are only logged.
func (j *CheckDatabasesJob) Run() error {
	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		db := j.databases[name]
		if db == nil {
			j.log.Warn().Str("database", name).Msg("Database not initialized, skipping")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		err := db.HealthCheck(ctx)
		cancel()
		if err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Database integrity check failed")
			return fmt.Errorf("database %s failed its health check: %w", name, err)
		}

		j.checkWAL(name, db)
	}

	j.log.Info().Int("checked", len(names)).Msg("Database checks passed")
	return nil
}

// checkWAL reads the checkpoint status and truncates the WAL when it has grown large
func (j *CheckDatabasesJob) checkWAL(name string, db *database.DB) {
	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, frames, checkpointed int
	if err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed); err != nil {
		j.log.Warn().Err(err).Str("database", name).Msg("Failed to check WAL checkpoint")
		return
	}

	if frames <= walWarnFrames {
		j.log.Debug().Str("database", name).Int("wal_frames", frames).Msg("WAL checkpoint status OK")
		return
	}

	j.log.Warn().
		Str("database", name).
		Int("wal_frames", frames).
		Int("checkpointed", checkpointed).
		Msg("WAL file is large, truncating")

	if err := db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Str("database", name).Msg("WAL truncate failed")
	}
}
