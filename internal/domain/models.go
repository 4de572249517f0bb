// Package domain provides core domain models and types.
package domain

import "time"

// ItemCategory selects which aggregation formula applies to an item
type ItemCategory string

const (
	// ItemCategoryHero is an item bound to a specific hero (hero meta affects price)
	ItemCategoryHero ItemCategory = "Hero Item"
	// ItemCategoryCommon is any other tradable item
	ItemCategoryCommon ItemCategory = "Common Item"
)

// RankCategory segments hero statistics by player skill bracket
type RankCategory string

const (
	RankHigh RankCategory = "High Rank"
	RankAll  RankCategory = "All Ranks"
)

// Valid reports whether c is a known item category
func (c ItemCategory) Valid() bool {
	return c == ItemCategoryHero || c == ItemCategoryCommon
}

// Valid reports whether r is a known rank category
func (r RankCategory) Valid() bool {
	return r == RankHigh || r == RankAll
}

// ItemMarketSnapshot is the current market state of one item.
// Every numeric field is optional: nil means "unknown", not zero.
type ItemMarketSnapshot struct {
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
	ItemID    string    `json:"item_id" msgpack:"item_id"`

	// Trade volumes
	Sold24h        *float64 `json:"sold24h,omitempty" msgpack:"sold24h,omitempty"`
	Sold7d         *float64 `json:"sold7d,omitempty" msgpack:"sold7d,omitempty"`
	Sold30d        *float64 `json:"sold30d,omitempty" msgpack:"sold30d,omitempty"`
	OfferVolume    *float64 `json:"offervolume,omitempty" msgpack:"offervolume,omitempty"`       // Outstanding sell offers
	BuyOrderVolume *float64 `json:"buyordervolume,omitempty" msgpack:"buyordervolume,omitempty"` // Outstanding buy orders

	// Prices
	PriceLatest        *float64 `json:"pricelatest,omitempty" msgpack:"pricelatest,omitempty"`
	PriceLatestSell    *float64 `json:"pricelatestsell,omitempty" msgpack:"pricelatestsell,omitempty"`
	PriceAvg           *float64 `json:"priceavg,omitempty" msgpack:"priceavg,omitempty"`
	PriceAvg7d         *float64 `json:"priceavg7d,omitempty" msgpack:"priceavg7d,omitempty"`
	PriceAvg30d        *float64 `json:"priceavg30d,omitempty" msgpack:"priceavg30d,omitempty"`
	PriceLatestSell7d  *float64 `json:"pricelatestsell7d,omitempty" msgpack:"pricelatestsell7d,omitempty"`
	PriceLatestSell30d *float64 `json:"pricelatestsell30d,omitempty" msgpack:"pricelatestsell30d,omitempty"`
	PriceMin           *float64 `json:"pricemin,omitempty" msgpack:"pricemin,omitempty"`
	PriceMax           *float64 `json:"pricemax,omitempty" msgpack:"pricemax,omitempty"`

	HoursToSold *float64 `json:"hourstosold,omitempty" msgpack:"hourstosold,omitempty"` // Average time to sale
}

// PriceHistorySample is an ordered (oldest first) series of price observations
type PriceHistorySample struct {
	ItemID string    `json:"item_id" msgpack:"item_id"`
	Prices []float64 `json:"prices" msgpack:"prices"`
}

// PricePoint is a single dated price observation
type PricePoint struct {
	RecordedAt time.Time `json:"recorded_at" msgpack:"recorded_at"`
	Price      float64   `json:"price" msgpack:"price"`
}

// HeroStatsRecord is the latest pick/win statistics snapshot for one hero in one rank category.
// Percent fields are on a 0-100 scale; change fields are fractional deltas.
type HeroStatsRecord struct {
	HeroID                 int          `json:"heroId,omitempty" msgpack:"heroId,omitempty"`
	RankCategory           RankCategory `json:"rankCategory,omitempty" msgpack:"rankCategory,omitempty"`
	PickRatePercent        float64      `json:"pickRatePercent" msgpack:"pickRatePercent"`
	PickRateChange24h      float64      `json:"pickRateChange24h" msgpack:"pickRateChange24h"`
	PickRateChange7d       float64      `json:"pickRateChange7d" msgpack:"pickRateChange7d"`
	WinRate                float64      `json:"winRate" msgpack:"winRate"`
	ProContestRateChange7d float64      `json:"proContestRateChange7d" msgpack:"proContestRateChange7d"`
}

// TrackedItem is an item the service scores on schedule
type TrackedItem struct {
	ItemID   string       `json:"item_id" msgpack:"item_id"`
	Name     string       `json:"name" msgpack:"name"`
	Category ItemCategory `json:"category" msgpack:"category"`
	HeroID   int          `json:"hero_id,omitempty" msgpack:"hero_id,omitempty"`
	Rank     RankCategory `json:"rank_category,omitempty" msgpack:"rank_category,omitempty"`
}

// Float returns a pointer to v. Handy for building snapshots in code and tests.
func Float(v float64) *float64 {
	return &v
}
