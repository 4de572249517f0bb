package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/itemsentinel/internal/domain"
)

// steadyItem has liquidity 0.625, demand 0.5, flat sales and no prices
func steadyItem() *domain.ItemMarketSnapshot {
	return &domain.ItemMarketSnapshot{
		ItemID:         "steady",
		Sold24h:        f(5000),
		Sold7d:         f(35000),
		Sold30d:        f(140000),
		OfferVolume:    f(1000),
		BuyOrderVolume: f(1001),
		HoursToSold:    f(0),
	}
}

// risingItem is steadyItem with a 10% price rise, giving momentum 0.6
func risingItem() *domain.ItemMarketSnapshot {
	item := steadyItem()
	item.PriceLatestSell = f(110)
	item.PriceLatestSell7d = f(100)
	item.PriceLatestSell30d = f(100)
	item.PriceAvg7d = f(100)
	return item
}

// neutralItem sits at 0.5 on every market metric except sales trend, which is 0.6
// (5000 daily sales against a 25000 weekly pace)
func neutralItem() *domain.ItemMarketSnapshot {
	return &domain.ItemMarketSnapshot{
		Sold24h:        f(5000),
		Sold7d:         f(25000),
		OfferVolume:    f(1000),
		BuyOrderVolume: f(1001),
		HoursToSold:    f(24),
	}
}

func TestEvaluateInvestment_CommonItem(t *testing.T) {
	engine := newTestEngine(staticHeroStats(risingHero, nil))

	result := engine.EvaluateInvestment(InvestmentInput{
		Item:     steadyItem(),
		Category: domain.ItemCategoryCommon,
		HeroID:   14,
		Rank:     domain.RankHigh,
	})

	// 0.5*(0.30+0.25+0.20+0.15) + 0.625*0.10
	assert.Equal(t, 51, result.Score)
	assert.Empty(t, result.Bonuses)
	assert.Equal(t, RiskMedium, result.Risk)
	assert.NotContains(t, result.Components, MetricHeroTrend)
	assert.Equal(t, 0.625, result.Components[MetricLiquidity])
}

func TestEvaluateInvestment_HeroItemWithoutHeroContext(t *testing.T) {
	engine := newTestEngine(nil)

	result := engine.EvaluateInvestment(InvestmentInput{
		Item:     risingItem(),
		Category: domain.ItemCategoryHero,
	})

	// hero trend neutral: 0.5*0.25 + 0.5*0.20 + 0.5*0.20 + 0.6*0.15 + 0.625*0.10 + 0.5*0.10
	assert.Equal(t, 53, result.Score)
	assert.Empty(t, result.Bonuses)
	assert.Equal(t, 0.5, result.Components[MetricHeroTrend])
}

func TestEvaluateInvestment_HeroMomentumBonus(t *testing.T) {
	engine := newTestEngine(staticHeroStats(risingHero, nil))

	result := engine.EvaluateInvestment(InvestmentInput{
		Item:     risingItem(),
		Category: domain.ItemCategoryHero,
		HeroID:   14,
		Rank:     domain.RankHigh,
	})

	// base 0.5725 boosted by 1.2
	assert.Equal(t, 69, result.Score)
	assert.Equal(t, []string{BonusHeroMomentum}, result.Bonuses)
	assert.Equal(t, 0.68, result.Components[MetricHeroTrend])
	assert.Equal(t, RiskMedium, result.Risk)
}

func TestEvaluateInvestment_BothBonusesCompound(t *testing.T) {
	engine := newTestEngine(staticHeroStats(risingHero, nil))
	item := risingItem()
	item.BuyOrderVolume = f(9000)

	result := engine.EvaluateInvestment(InvestmentInput{
		Item:     item,
		Category: domain.ItemCategoryHero,
		HeroID:   14,
		Rank:     domain.RankHigh,
	})

	demand := 9000.0 / 10001.0
	base := 0.68*0.25 + 0.5*0.20 + demand*0.20 + 0.6*0.15 + 0.625*0.10 + 0.5*0.10
	want := int(math.Round(math.Min(1, math.Min(1, base*1.2)*1.15) * 100))

	assert.Equal(t, want, result.Score)
	assert.Equal(t, 90, result.Score)
	assert.Equal(t, []string{BonusHeroMomentum, BonusDemandLiquidity}, result.Bonuses)
}

func TestEvaluateInvestment_NilItem(t *testing.T) {
	engine := newTestEngine(nil)
	result := engine.EvaluateInvestment(InvestmentInput{Category: domain.ItemCategoryHero})

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, RiskMedium, result.Risk)
	assert.Equal(t, 50, engine.InvestmentScore(InvestmentInput{}))
}

func TestEvaluateInvestment_StaysInRange(t *testing.T) {
	engine := newTestEngine(staticHeroStats(domain.HeroStatsRecord{
		PickRatePercent: 100, WinRate: 100, PickRateChange7d: 1, ProContestRateChange7d: 1,
	}, nil))

	item := &domain.ItemMarketSnapshot{
		Sold24h: f(1e6), Sold7d: f(1e6), Sold30d: f(1), OfferVolume: f(0), BuyOrderVolume: f(1e6), HoursToSold: f(0),
		PriceLatest: f(1000), PriceAvg7d: f(1), PriceAvg30d: f(1), PriceMin: f(1), PriceMax: f(1000), PriceAvg: f(10),
	}

	for _, category := range []domain.ItemCategory{domain.ItemCategoryHero, domain.ItemCategoryCommon} {
		score := engine.InvestmentScore(InvestmentInput{Item: item, Category: category, HeroID: 1, Rank: domain.RankAll})
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestEvaluateBuyback(t *testing.T) {
	engine := newTestEngine(nil)

	tests := []struct {
		name          string
		sell, current float64
		want          int
	}{
		{
			name: "half price drop", sell: 100, current: 50,
			want: int(math.Round((0.5*0.30 + 0.5*0.20 + 0.5*0.15 + 0.5*0.15 + 0.5*0.10 + 0.5*0.10) * 100)),
		},
		{name: "twenty percent drop", sell: 100, current: 80, want: 41},
		{name: "price went up", sell: 100, current: 120, want: 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.EvaluateBuyback(BuybackInput{Item: neutralItem(), SellPrice: tt.sell, CurrentPrice: tt.current})
			assert.Equal(t, tt.want, result.Score)
			assert.Empty(t, result.Bonuses)
		})
	}
}

func TestEvaluateBuyback_UsesHeroTrend(t *testing.T) {
	engine := newTestEngine(staticHeroStats(risingHero, nil))

	score := engine.BuybackScore(BuybackInput{
		Item: neutralItem(), SellPrice: 100, CurrentPrice: 50, HeroID: 14, Rank: domain.RankHigh,
	})

	// 0.5*0.85 + 0.68*0.15
	assert.Equal(t, 53, score)
}

func TestEvaluateBuyback_Neutral(t *testing.T) {
	engine := newTestEngine(nil)

	inputs := []BuybackInput{
		{Item: nil, SellPrice: 100, CurrentPrice: 50},
		{Item: neutralItem(), SellPrice: 0, CurrentPrice: 50},
		{Item: neutralItem(), SellPrice: 100, CurrentPrice: 0},
		{Item: neutralItem(), SellPrice: math.NaN(), CurrentPrice: 50},
	}

	for _, in := range inputs {
		assert.Equal(t, 50, engine.BuybackScore(in))
	}
}
