package portfolio

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// PositionRepository handles position database operations
type PositionRepository struct {
	db  *sql.DB // portfolio.db
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// GetAll returns all positions ordered by item id
func (r *PositionRepository) GetAll() ([]Position, error) {
	rows, err := r.db.Query(`SELECT item_id, quantity, total_investment, current_value_after_fee,
		profit, profit_percent_after_fee, updated_at
		FROM positions ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetByItemID returns a position, or nil when the item is not held
func (r *PositionRepository) GetByItemID(itemID string) (*Position, error) {
	row := r.db.QueryRow(`SELECT item_id, quantity, total_investment, current_value_after_fee,
		profit, profit_percent_after_fee, updated_at
		FROM positions WHERE item_id = ?`, itemID)

	pos, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position %s: %w", itemID, err)
	}
	return &pos, nil
}

// Upsert inserts or replaces a position
func (r *PositionRepository) Upsert(position Position) error {
	if position.ItemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidPosition)
	}
	for _, v := range []float64{position.Quantity, position.TotalInvestment, position.CurrentValueAfterFee,
		position.Profit, position.ProfitPercentAfterFee} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value for %s", ErrInvalidPosition, position.ItemID)
		}
	}
	if position.UpdatedAt.IsZero() {
		position.UpdatedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT OR REPLACE INTO positions
		(item_id, quantity, total_investment, current_value_after_fee, profit, profit_percent_after_fee, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		position.ItemID, position.Quantity, position.TotalInvestment, position.CurrentValueAfterFee,
		position.Profit, position.ProfitPercentAfterFee, position.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", position.ItemID, err)
	}

	r.log.Debug().Str("item_id", position.ItemID).Float64("quantity", position.Quantity).Msg("Position upserted")
	return nil
}

// Delete removes a position
func (r *PositionRepository) Delete(itemID string) error {
	if _, err := r.db.Exec(`DELETE FROM positions WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete position %s: %w", itemID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(s scanner) (Position, error) {
	var pos Position
	var updatedAt int64
	err := s.Scan(&pos.ItemID, &pos.Quantity, &pos.TotalInvestment, &pos.CurrentValueAfterFee,
		&pos.Profit, &pos.ProfitPercentAfterFee, &updatedAt)
	if err != nil {
		return Position{}, err
	}
	pos.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return pos, nil
}
