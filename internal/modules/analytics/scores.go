package analytics

import (
	"math"

	"github.com/aristath/itemsentinel/internal/domain"
)

// Correlation bonus identifiers reported in ScoreResult.Bonuses
const (
	BonusHeroMomentum    = "hero_trend_momentum"
	BonusDemandLiquidity = "demand_liquidity"
)

// neutralScore is the percentage-scale midpoint returned when an item has no data
const neutralScore = 50

// InvestmentInput carries everything needed to score a purchase
type InvestmentInput struct {
	Item     *domain.ItemMarketSnapshot
	History  *domain.PriceHistorySample
	Category domain.ItemCategory
	HeroID   int
	Rank     domain.RankCategory
}

// BuybackInput carries everything needed to score buying back a previously sold item
type BuybackInput struct {
	Item         *domain.ItemMarketSnapshot
	History      *domain.PriceHistorySample
	SellPrice    float64
	CurrentPrice float64
	HeroID       int
	Rank         domain.RankCategory
}

// ScoreResult is a percentage-scale score with its unit-scale breakdown
type ScoreResult struct {
	Components map[string]float64 `json:"components,omitempty" msgpack:"components,omitempty"`
	Bonuses    []string           `json:"bonuses,omitempty" msgpack:"bonuses,omitempty"`
	Risk       RiskLevel          `json:"risk_level" msgpack:"risk_level"`
	Score      int                `json:"score" msgpack:"score"`
}

// marketMetrics are the item-level unit scores shared by both aggregators
type marketMetrics struct {
	liquidity  float64
	demand     float64
	momentum   float64
	salesTrend float64
	volatility float64
}

func computeMarketMetrics(item *domain.ItemMarketSnapshot, history *domain.PriceHistorySample) marketMetrics {
	return marketMetrics{
		liquidity:  LiquidityScore(item),
		demand:     DemandRatio(item),
		momentum:   PriceMomentum(item),
		salesTrend: SalesTrend(item),
		volatility: VolatilityIndex(item, history),
	}
}

// InvestmentScore returns the 0-100 buy score for an item
func (e *Engine) InvestmentScore(in InvestmentInput) int {
	return e.EvaluateInvestment(in).Score
}

// EvaluateInvestment scores a purchase and returns the breakdown.
// Hero items blend six metrics and may earn two compounding correlation bonuses:
// - hero trend > 0.6 and momentum > 0.5: x1.2
// - demand > 0.7 and liquidity > 0.6: x1.15
// Each bonus caps the running unit score at 1.0. Common items ignore hero data and
// use the common weight set without bonuses.
func (e *Engine) EvaluateInvestment(in InvestmentInput) ScoreResult {
	if in.Item == nil {
		return neutralResult()
	}

	m := computeMarketMetrics(in.Item, in.History)

	if in.Category != domain.ItemCategoryHero {
		w := e.weights.CommonInvestment
		components := []Component{
			{Name: MetricVolatility, Value: m.volatility, Weight: w.Get(MetricVolatility)},
			{Name: MetricDemandRatio, Value: m.demand, Weight: w.Get(MetricDemandRatio)},
			{Name: MetricPriceMomentum, Value: m.momentum, Weight: w.Get(MetricPriceMomentum)},
			{Name: MetricSalesTrend, Value: m.salesTrend, Weight: w.Get(MetricSalesTrend)},
			{Name: MetricLiquidity, Value: m.liquidity, Weight: w.Get(MetricLiquidity)},
		}

		score := toPercentScore(clamp01(weightedSum(components)))
		return ScoreResult{
			Score:      score,
			Components: componentValues(components),
			Risk:       CalculateRiskLevel(float64(score), m.volatility, m.demand),
		}
	}

	heroTrend := 0.5
	if e.hasHeroContext(in.HeroID, in.Rank) {
		heroTrend = e.HeroTrendScore(in.HeroID, in.Rank)
	}

	w := e.weights.Investment
	components := []Component{
		{Name: MetricHeroTrend, Value: heroTrend, Weight: w.Get(MetricHeroTrend)},
		{Name: MetricVolatility, Value: m.volatility, Weight: w.Get(MetricVolatility)},
		{Name: MetricDemandRatio, Value: m.demand, Weight: w.Get(MetricDemandRatio)},
		{Name: MetricPriceMomentum, Value: m.momentum, Weight: w.Get(MetricPriceMomentum)},
		{Name: MetricLiquidity, Value: m.liquidity, Weight: w.Get(MetricLiquidity)},
		{Name: MetricSalesTrend, Value: m.salesTrend, Weight: w.Get(MetricSalesTrend)},
	}

	unit := weightedSum(components)
	var bonuses []string

	if heroTrend > 0.6 && m.momentum > 0.5 {
		unit = math.Min(1.0, unit*1.2)
		bonuses = append(bonuses, BonusHeroMomentum)
	}
	if m.demand > 0.7 && m.liquidity > 0.6 {
		unit = math.Min(1.0, unit*1.15)
		bonuses = append(bonuses, BonusDemandLiquidity)
	}

	score := toPercentScore(unit)
	return ScoreResult{
		Score:      score,
		Components: componentValues(components),
		Bonuses:    bonuses,
		Risk:       CalculateRiskLevel(float64(score), m.volatility, m.demand),
	}
}

// BuybackScore returns the 0-100 score for buying back an item sold at SellPrice
func (e *Engine) BuybackScore(in BuybackInput) int {
	return e.EvaluateBuyback(in).Score
}

// EvaluateBuyback scores a buyback and returns the breakdown. The price drop since the
// sale, (sell - current) / sell, is the leading term. Hero trend is used whenever hero
// context is present, regardless of item category. No correlation bonuses apply.
func (e *Engine) EvaluateBuyback(in BuybackInput) ScoreResult {
	if in.Item == nil || !usablePrice(in.SellPrice) || !usablePrice(in.CurrentPrice) {
		return neutralResult()
	}

	m := computeMarketMetrics(in.Item, in.History)

	heroTrend := 0.5
	if e.hasHeroContext(in.HeroID, in.Rank) {
		heroTrend = e.HeroTrendScore(in.HeroID, in.Rank)
	}

	priceDrop := NormalizeUnit((in.SellPrice-in.CurrentPrice)/in.SellPrice, 0, 1)

	w := e.weights.Buyback
	components := []Component{
		{Name: MetricPriceDrop, Value: priceDrop, Weight: w.Get(MetricPriceDrop)},
		{Name: MetricVolatility, Value: m.volatility, Weight: w.Get(MetricVolatility)},
		{Name: MetricHeroTrend, Value: heroTrend, Weight: w.Get(MetricHeroTrend)},
		{Name: MetricDemandRatio, Value: m.demand, Weight: w.Get(MetricDemandRatio)},
		{Name: MetricPriceMomentum, Value: m.momentum, Weight: w.Get(MetricPriceMomentum)},
		{Name: MetricLiquidity, Value: m.liquidity, Weight: w.Get(MetricLiquidity)},
	}

	score := toPercentScore(weightedSum(components))
	return ScoreResult{
		Score:      score,
		Components: componentValues(components),
		Risk:       CalculateRiskLevel(float64(score), m.volatility, m.demand),
	}
}

// neutralResult is returned when the primary input is missing
func neutralResult() ScoreResult {
	return ScoreResult{
		Score: neutralScore,
		Risk:  CalculateRiskLevel(neutralScore, 0.5, 0.5),
	}
}

// usablePrice rejects zero and NaN prices
func usablePrice(p float64) bool {
	return p != 0 && !math.IsNaN(p)
}
