package analytics

import (
	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/pkg/formulas"
)

// Liquidity normalization caps
const (
	maxSold24h          = 10000.0
	maxSold7d           = 50000.0
	offerVolumeScale    = 1000.0
	hoursToSoldBaseline = 24.0
)

// LiquidityScore rates how easily an item trades (0-1).
// Components:
// - 24h sales (35%), capped at 10k
// - 7d sales (25%), capped at 50k
// - Open sell offers (25%), inverted: more unsold supply is worse
// - Average hours to sell (15%), inverted: faster is better
func LiquidityScore(item *domain.ItemMarketSnapshot) float64 {
	if item == nil {
		return 0.5
	}

	sold24h := valueOr(item.Sold24h, 0)
	sold7d := valueOr(item.Sold7d, 0)
	offerVolume := valueOr(item.OfferVolume, 1)
	hoursToSold := valueOr(item.HoursToSold, hoursToSoldBaseline)

	sold24hComponent := clamp(sold24h/maxSold24h, 0, 1) * 0.35
	sold7dComponent := clamp(sold7d/maxSold7d, 0, 1) * 0.25
	offerComponent := clamp((1/(1+offerVolume/offerVolumeScale))*0.25, 0, 0.25)
	speedComponent := clamp((1/(1+hoursToSold/hoursToSoldBaseline))*0.15, 0, 0.15)

	return clamp01(sold24hComponent + sold7dComponent + offerComponent + speedComponent)
}

// DemandRatio is the share of buy orders in the open order book (0-1).
// The +1 in the denominator keeps an empty book at 0 instead of NaN.
func DemandRatio(item *domain.ItemMarketSnapshot) float64 {
	if item == nil {
		return 0.5
	}

	buyOrders := valueOr(item.BuyOrderVolume, 0)
	offers := valueOr(item.OfferVolume, 1)

	// negative volumes can cancel the +1
	denominator := buyOrders + offers + 1
	if !(denominator > 0) {
		return 0
	}

	return clamp01(buyOrders / denominator)
}

// PriceMomentum scores recent price drift (0-1, 0.5 = flat).
// Blend: 50% vs 7d reference, 30% vs 30d reference, 20% vs 7d average.
// Moves beyond +/-50% saturate.
func PriceMomentum(item *domain.ItemMarketSnapshot) float64 {
	if item == nil {
		return 0.5
	}

	current, ok := firstPositive(item.PriceLatestSell, item.PriceLatest)
	if !ok {
		return 0.5
	}

	price7d := positiveOr(current, item.PriceLatestSell7d, item.PriceAvg7d)
	price30d := positiveOr(current, item.PriceLatestSell30d, item.PriceAvg30d)
	priceAvg7d := positiveOr(current, item.PriceAvg7d)

	change7d := (current - price7d) / price7d
	change30d := (current - price30d) / price30d
	changeAvg7d := (current - priceAvg7d) / priceAvg7d

	momentum := change7d*0.5 + change30d*0.3 + changeAvg7d*0.2

	return NormalizeToRange(momentum, -0.5, 0.5, 0, 1)
}

// SalesTrend compares short-window sales rates against longer windows (0-1, 0.5 = steady).
// The 24h rate is scaled to a week and compared to real 7d sales; the 7d rate is scaled
// to a month and compared to real 30d sales. Each term counts only with a nonzero base.
func SalesTrend(item *domain.ItemMarketSnapshot) float64 {
	if item == nil {
		return 0.5
	}

	sold24h := valueOr(item.Sold24h, 0)
	sold7d := valueOr(item.Sold7d, 0)
	sold30d := valueOr(item.Sold30d, 0)

	if sold7d == 0 && sold30d == 0 {
		return 0.5
	}

	trend := 0.0
	if sold7d > 0 {
		trend += ((sold24h*7 - sold7d) / sold7d) * 0.5
	}
	if sold30d > 0 {
		trend += ((sold7d*4 - sold30d) / sold30d) * 0.5
	}

	return NormalizeToRange(trend, -1, 1, 0, 1)
}

// VolatilityIndex measures price dispersion relative to the average price (0-1).
// High volatility scores higher: swings are treated as trading opportunity.
// A price history sample is preferred; without one the snapshot min/max/average is
// used and the standard deviation is approximated as range/4.
func VolatilityIndex(item *domain.ItemMarketSnapshot, history *domain.PriceHistorySample) float64 {
	var minPrice, maxPrice, avgPrice, stdDev float64

	if history != nil {
		prices := formulas.PositiveOnly(history.Prices)
		if len(prices) > 0 {
			minPrice, maxPrice = formulas.MinMax(prices)
			avgPrice = formulas.Mean(prices)
			stdDev = formulas.PopStdDev(prices)
		}
	}

	if minPrice <= 0 || maxPrice <= 0 || avgPrice <= 0 {
		if item == nil {
			return 0.5
		}

		minPrice = valueOr(item.PriceMin, 0)
		maxPrice = valueOr(item.PriceMax, 0)
		avgPrice = positiveOr(0, item.PriceAvg, item.PriceLatest)

		stdDev = 0
		if minPrice > 0 && maxPrice > 0 && avgPrice > 0 {
			stdDev = (maxPrice - minPrice) / 4
		}
	}

	if avgPrice <= 0 {
		return 0.5
	}

	rangeVolatility := (maxPrice - minPrice) / avgPrice
	stdDevVolatility := stdDev / avgPrice
	volatility := rangeVolatility*0.5 + stdDevVolatility*0.5

	return NormalizeUnit(volatility, 0, 1)
}

// valueOr dereferences p, falling back to def when the field is unknown
func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// firstPositive returns the first known, strictly positive value
func firstPositive(values ...*float64) (float64, bool) {
	for _, v := range values {
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	return 0, false
}

// positiveOr is firstPositive with a fallback
func positiveOr(def float64, values ...*float64) float64 {
	if v, ok := firstPositive(values...); ok {
		return v
	}
	return def
}
