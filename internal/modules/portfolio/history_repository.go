package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHistoryLimit caps History when no limit is given
const DefaultHistoryLimit = 30

// HistoryRepository stores portfolio snapshots
type HistoryRepository struct {
	db  *sql.DB // portfolio.db
	log zerolog.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		log: log.With().Str("repo", "portfolio_history").Logger(),
	}
}

// Insert stores a snapshot
func (r *HistoryRepository) Insert(entry HistoryEntry) error {
	_, err := r.db.Exec(`INSERT INTO portfolio_history
		(id, total_investment, total_current_value, total_profit, total_profit_percent,
		 avg_profitability, position_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TotalInvestment, entry.TotalCurrentValue, entry.TotalProfit,
		entry.TotalProfitPercent, entry.AvgProfitability, entry.PositionCount, entry.RecordedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert portfolio snapshot: %w", err)
	}
	return nil
}

// List returns up to limit snapshots, newest first
func (r *HistoryRepository) List(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.Query(`SELECT id, total_investment, total_current_value, total_profit,
		total_profit_percent, avg_profitability, position_count, recorded_at
		FROM portfolio_history ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var recordedAt int64
		if err := rows.Scan(&e.ID, &e.TotalInvestment, &e.TotalCurrentValue, &e.TotalProfit,
			&e.TotalProfitPercent, &e.AvgProfitability, &e.PositionCount, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio snapshot: %w", err)
		}
		e.RecordedAt = time.Unix(0, recordedAt).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio history: %w", err)
	}

	return entries, nil
}
