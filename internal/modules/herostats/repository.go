// Package herostats stores hero pick/win statistics and serves the latest record per hero and rank.
package herostats

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/domain"
)

// Repository keeps every fetched stats record; readers only ever see the newest one.
// It implements domain.HeroStatsProvider.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a hero stats repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "hero_stats").Logger(),
	}
}

// Store records a stats snapshot for a hero and rank, timestamped fetchedAt (now when zero)
func (r *Repository) Store(record domain.HeroStatsRecord, fetchedAt time.Time) error {
	if record.HeroID <= 0 {
		return fmt.Errorf("invalid hero id %d", record.HeroID)
	}
	if !record.RankCategory.Valid() {
		return fmt.Errorf("invalid rank category %q", record.RankCategory)
	}
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal hero stats: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO hero_stats (hero_id, rank_category, data, fetched_at) VALUES (?, ?, ?, ?)`,
		record.HeroID, string(record.RankCategory), string(data), fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store hero stats for hero %d: %w", record.HeroID, err)
	}

	return nil
}

// GetLatestStats returns the newest stats JSON for a hero and rank as a string,
// or nil when none is stored
func (r *Repository) GetLatestStats(heroID int, rank domain.RankCategory) (interface{}, error) {
	var data string
	err := r.db.QueryRow(`SELECT data FROM hero_stats
		WHERE hero_id = ? AND rank_category = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1`, heroID, string(rank)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hero stats for hero %d: %w", heroID, err)
	}

	return data, nil
}

// GetLatestRecord is GetLatestStats decoded into a record
func (r *Repository) GetLatestRecord(heroID int, rank domain.RankCategory) (*domain.HeroStatsRecord, error) {
	payload, err := r.GetLatestStats(heroID, rank)
	if err != nil || payload == nil {
		return nil, err
	}

	var record domain.HeroStatsRecord
	if err := json.Unmarshal([]byte(payload.(string)), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hero stats for hero %d: %w", heroID, err)
	}

	return &record, nil
}

// PruneOlderThan deletes records fetched before now-maxAge, always keeping the newest
// record of every hero and rank. Returns the number of deleted rows.
func (r *Repository) PruneOlderThan(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := r.db.Exec(`DELETE FROM hero_stats
		WHERE fetched_at < ?
		AND id NOT IN (
			SELECT MAX(id) FROM hero_stats h
			WHERE h.fetched_at = (
				SELECT MAX(fetched_at) FROM hero_stats l
				WHERE l.hero_id = h.hero_id AND l.rank_category = h.rank_category
			)
			GROUP BY hero_id, rank_category
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune hero stats: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if deleted > 0 {
		r.log.Debug().Int64("deleted", deleted).Dur("max_age", maxAge).Msg("Pruned hero stats")
	}

	return deleted, nil
}
