package domain

// HeroStatsProvider looks up the latest known statistics for a hero.
// The payload may be a HeroStatsRecord (value or pointer), a JSON string/bytes, or nil when
// nothing is known. Callers must treat nil and errors as "no data", never as a failure.
type HeroStatsProvider interface {
	GetLatestStats(heroID int, rank RankCategory) (interface{}, error)
}

// HeroStatsProviderFunc adapts a function to HeroStatsProvider
type HeroStatsProviderFunc func(heroID int, rank RankCategory) (interface{}, error)

// GetLatestStats calls f(heroID, rank)
func (f HeroStatsProviderFunc) GetLatestStats(heroID int, rank RankCategory) (interface{}, error) {
	return f(heroID, rank)
}

// MarketDataProvider supplies market snapshots and price history for items.
// Both methods return nil, nil when the item is unknown.
type MarketDataProvider interface {
	GetSnapshot(itemID string) (*ItemMarketSnapshot, error)
	GetPriceHistory(itemID string, limit int) (*PriceHistorySample, error)
}

// TrackedItemProvider lists and resolves the items the service scores
type TrackedItemProvider interface {
	GetTrackedItem(itemID string) (*TrackedItem, error)
	ListTrackedItems() ([]TrackedItem, error)
}
