package scoring

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/itemsentinel/internal/modules/analytics"
)

// Repository persists score records in the item_scores table of market.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a score repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "score").Logger(),
	}
}

// Save inserts a record, assigning an id and timestamp when missing
func (r *Repository) Save(record *ScoreRecord, buybackComponents map[string]float64) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ComputedAt.IsZero() {
		record.ComputedAt = time.Now().UTC()
	}

	detail, err := msgpack.Marshal(breakdown{
		Components:        record.Components,
		BuybackComponents: buybackComponents,
		Bonuses:           record.Bonuses,
	})
	if err != nil {
		return fmt.Errorf("failed to encode score breakdown: %w", err)
	}

	var buyback sql.NullInt64
	if record.BuybackScore != nil {
		buyback = sql.NullInt64{Int64: int64(*record.BuybackScore), Valid: true}
	}

	_, err = r.db.Exec(`INSERT INTO item_scores
		(id, run_id, item_id, investment_score, buyback_score, meta_signal, risk_level, breakdown, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RunID, record.ItemID, record.InvestmentScore, buyback, record.MetaSignal,
		string(record.RiskLevel), detail, record.ComputedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save score for %s: %w", record.ItemID, err)
	}

	return nil
}

const recordColumns = `id, run_id, item_id, investment_score, buyback_score, meta_signal, risk_level, breakdown, computed_at`

// Latest returns the newest record for an item, or nil if it was never scored
func (r *Repository) Latest(itemID string) (*ScoreRecord, error) {
	row := r.db.QueryRow(`SELECT `+recordColumns+` FROM item_scores
		WHERE item_id = ?
		ORDER BY computed_at DESC, rowid DESC
		LIMIT 1`, itemID)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score for %s: %w", itemID, err)
	}

	return record, nil
}

// Rankings returns the newest record of every item ordered by investment score (best first)
func (r *Repository) Rankings(limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	// One row per item: the newest, with the later insert winning a timestamp tie
	rows, err := r.db.Query(`SELECT `+recordColumns+` FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY item_id ORDER BY computed_at DESC, rowid DESC
			) AS recency
			FROM item_scores
		)
		WHERE recency = 1
		ORDER BY investment_score DESC, item_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var records []ScoreRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rankings: %w", err)
	}

	return records, nil
}

// DeleteOlderThan removes records computed before the cutoff, keeping each item's newest
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM item_scores
		WHERE computed_at < ?
		AND computed_at < (SELECT MAX(computed_at) FROM item_scores l WHERE l.item_id = item_scores.item_id)`,
		cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old scores: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*ScoreRecord, error) {
	var record ScoreRecord
	var buyback sql.NullInt64
	var risk string
	var detail []byte
	var computedAt int64

	err := s.Scan(&record.ID, &record.RunID, &record.ItemID, &record.InvestmentScore, &buyback,
		&record.MetaSignal, &risk, &detail, &computedAt)
	if err != nil {
		return nil, err
	}

	var b breakdown
	if err := msgpack.Unmarshal(detail, &b); err != nil {
		return nil, fmt.Errorf("failed to decode score breakdown: %w", err)
	}

	if buyback.Valid {
		v := int(buyback.Int64)
		record.BuybackScore = &v
	}
	record.RiskLevel = analytics.RiskLevel(risk)
	record.Components = b.Components
	record.Bonuses = b.Bonuses
	record.ComputedAt = time.Unix(0, computedAt).UTC()

	return &record, nil
}
