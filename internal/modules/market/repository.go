// Package market stores item market snapshots, price history and the tracked item list.
package market

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/itemsentinel/internal/database"
	"github.com/aristath/itemsentinel/internal/domain"
)

// DefaultHistoryLimit caps price history reads when the caller passes a non-positive limit
const DefaultHistoryLimit = 90

// ErrInvalidPrice is returned when a non-positive or NaN price is appended
var ErrInvalidPrice = errors.New("price must be positive")

// Repository handles market data in market.db. It implements domain.MarketDataProvider
// and domain.TrackedItemProvider.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a market repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "market").Logger(),
	}
}

// snapshotColumns lists the nullable snapshot columns in ItemMarketSnapshot field order
const snapshotColumns = `sold_24h, sold_7d, sold_30d, offer_volume, buy_order_volume,
	price_latest, price_latest_sell, price_avg, price_avg_7d, price_avg_30d,
	price_latest_sell_7d, price_latest_sell_30d, price_min, price_max, hours_to_sold`

// snapshotFields returns pointers to the snapshot's optional fields in column order
func snapshotFields(s *domain.ItemMarketSnapshot) []**float64 {
	return []**float64{
		&s.Sold24h, &s.Sold7d, &s.Sold30d, &s.OfferVolume, &s.BuyOrderVolume,
		&s.PriceLatest, &s.PriceLatestSell, &s.PriceAvg, &s.PriceAvg7d, &s.PriceAvg30d,
		&s.PriceLatestSell7d, &s.PriceLatestSell30d, &s.PriceMin, &s.PriceMax, &s.HoursToSold,
	}
}

// UpsertSnapshot stores the latest market snapshot for an item, replacing any previous one.
// Unknown (nil) fields are stored as NULL.
func (r *Repository) UpsertSnapshot(snapshot domain.ItemMarketSnapshot) error {
	if snapshot.ItemID == "" {
		return fmt.Errorf("snapshot item id is required")
	}

	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	fields := snapshotFields(&snapshot)
	args := make([]interface{}, 0, len(fields)+2)
	args = append(args, snapshot.ItemID)
	for _, f := range fields {
		args = append(args, nullFloat(*f))
	}
	args = append(args, updatedAt.Unix())

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := `INSERT OR REPLACE INTO item_snapshots (item_id, ` + snapshotColumns + `, updated_at)
		VALUES (` + placeholders + `)`

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", snapshot.ItemID, err)
	}

	return nil
}

// GetSnapshot returns the stored snapshot for an item, or nil if none exists
func (r *Repository) GetSnapshot(itemID string) (*domain.ItemMarketSnapshot, error) {
	query := `SELECT item_id, ` + snapshotColumns + `, updated_at FROM item_snapshots WHERE item_id = ?`

	snapshot := domain.ItemMarketSnapshot{}
	fields := snapshotFields(&snapshot)
	values := make([]sql.NullFloat64, len(fields))

	dest := make([]interface{}, 0, len(fields)+2)
	dest = append(dest, &snapshot.ItemID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	var updatedAt int64
	dest = append(dest, &updatedAt)

	err := r.db.QueryRow(query, itemID).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", itemID, err)
	}

	for i, f := range fields {
		if values[i].Valid {
			v := values[i].Float64
			*f = &v
		}
	}
	snapshot.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &snapshot, nil
}

// AppendPrice records an observed price for an item
func (r *Repository) AppendPrice(itemID string, price float64, recordedAt time.Time) error {
	if !(price > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO price_history (item_id, price, recorded_at) VALUES (?, ?, ?)`,
		itemID, price, recordedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to append price for %s: %w", itemID, err)
	}

	return nil
}

// GetDatedHistory returns the most recent limit prices for an item with their timestamps,
// ordered oldest to newest
func (r *Repository) GetDatedHistory(itemID string, limit int) ([]domain.PricePoint, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `SELECT price, recorded_at FROM (
		SELECT id, price, recorded_at FROM price_history
		WHERE item_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	) ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.Query(query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history for %s: %w", itemID, err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var price float64
		var recordedAt int64
		if err := rows.Scan(&price, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, domain.PricePoint{
			RecordedAt: time.Unix(recordedAt, 0).UTC(),
			Price:      price,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price history: %w", err)
	}

	return points, nil
}

// GetPriceHistory returns up to limit recent prices for an item ordered oldest to newest,
// or nil when the item has no recorded prices
func (r *Repository) GetPriceHistory(itemID string, limit int) (*domain.PriceHistorySample, error) {
	points, err := r.GetDatedHistory(itemID, limit)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}

	return &domain.PriceHistorySample{ItemID: itemID, Prices: prices}, nil
}

// UpsertTrackedItem adds an item to the scoring set or updates its metadata
func (r *Repository) UpsertTrackedItem(item domain.TrackedItem) error {
	if item.ItemID == "" {
		return fmt.Errorf("tracked item id is required")
	}
	if !item.Category.Valid() {
		return fmt.Errorf("invalid item category %q", item.Category)
	}
	if item.Rank != "" && !item.Rank.Valid() {
		return fmt.Errorf("invalid rank category %q", item.Rank)
	}

	now := time.Now().Unix()
	query := `INSERT INTO tracked_items (item_id, name, category, hero_id, rank_category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			hero_id = excluded.hero_id,
			rank_category = excluded.rank_category,
			updated_at = excluded.updated_at`

	_, err := r.db.Exec(query, item.ItemID, item.Name, string(item.Category), item.HeroID, string(item.Rank), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert tracked item %s: %w", item.ItemID, err)
	}

	return nil
}

// GetTrackedItem returns a tracked item, or nil if it is not tracked
func (r *Repository) GetTrackedItem(itemID string) (*domain.TrackedItem, error) {
	row := r.db.QueryRow(`SELECT item_id, name, category, hero_id, rank_category
		FROM tracked_items WHERE item_id = ?`, itemID)

	item, err := scanTrackedItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked item %s: %w", itemID, err)
	}

	return &item, nil
}

// ListTrackedItems returns every tracked item ordered by id
func (r *Repository) ListTrackedItems() ([]domain.TrackedItem, error) {
	rows, err := r.db.Query(`SELECT item_id, name, category, hero_id, rank_category
		FROM tracked_items ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked items: %w", err)
	}
	defer rows.Close()

	var items []domain.TrackedItem
	for rows.Next() {
		item, err := scanTrackedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracked items: %w", err)
	}

	return items, nil
}

// DeleteTrackedItem stops tracking an item. Its snapshot and price history are kept.
func (r *Repository) DeleteTrackedItem(itemID string) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM tracked_items WHERE item_id = ?`, itemID)
		if err != nil {
			return fmt.Errorf("failed to delete tracked item %s: %w", itemID, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			r.log.Debug().Str("item_id", itemID).Msg("Tracked item not found for deletion")
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrackedItem(s scanner) (domain.TrackedItem, error) {
	var item domain.TrackedItem
	var category, rank string

	if err := s.Scan(&item.ItemID, &item.Name, &category, &item.HeroID, &rank); err != nil {
		return item, err
	}
	item.Category = domain.ItemCategory(category)
	item.Rank = domain.RankCategory(rank)

	return item, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
