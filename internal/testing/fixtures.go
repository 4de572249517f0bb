package testing

import (
	"time"

	"github.com/aristath/itemsentinel/internal/domain"
)

// Hero ids used by fixtures
const (
	HeroAntiMage = 1
	HeroPudge    = 14
)

// NewTrackedItemFixtures returns one hero item per rank plus a common item
func NewTrackedItemFixtures() []domain.TrackedItem {
	return []domain.TrackedItem{
		{
			ItemID:   "item-manta-style",
			Name:     "Manta Style Set",
			Category: domain.ItemCategoryHero,
			HeroID:   HeroAntiMage,
			Rank:     domain.RankHigh,
		},
		{
			ItemID:   "item-dragonclaw-hook",
			Name:     "Dragonclaw Hook",
			Category: domain.ItemCategoryHero,
			HeroID:   HeroPudge,
			Rank:     domain.RankAll,
		},
		{
			ItemID:   "item-treasure-key",
			Name:     "Treasure Key",
			Category: domain.ItemCategoryCommon,
		},
	}
}

// NewSnapshotFixture returns a fully populated snapshot for itemID
func NewSnapshotFixture(itemID string) domain.ItemMarketSnapshot {
	f := domain.Float
	return domain.ItemMarketSnapshot{
		UpdatedAt:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ItemID:             itemID,
		Sold24h:            f(120),
		Sold7d:             f(700),
		Sold30d:            f(2800),
		OfferVolume:        f(450),
		BuyOrderVolume:     f(900),
		PriceLatest:        f(12.5),
		PriceLatestSell:    f(12.2),
		PriceAvg:           f(11.8),
		PriceAvg7d:         f(11.5),
		PriceAvg30d:        f(10.9),
		PriceLatestSell7d:  f(11.4),
		PriceLatestSell30d: f(10.8),
		PriceMin:           f(9.5),
		PriceMax:           f(13.9),
		HoursToSold:        f(6),
	}
}

// NewHeroStatsFixture returns stats for a hero whose pick rate is climbing
func NewHeroStatsFixture(heroID int, rank domain.RankCategory) domain.HeroStatsRecord {
	return domain.HeroStatsRecord{
		HeroID:                 heroID,
		RankCategory:           rank,
		PickRatePercent:        62,
		PickRateChange24h:      0.3,
		PickRateChange7d:       0.2,
		WinRate:                54,
		ProContestRateChange7d: 0.1,
	}
}
