// Package trend classifies the direction of an item's price history by a vote of four
// independent methods with volatility-adaptive thresholds.
package trend

import (
	"math"
	"time"

	"github.com/aristath/itemsentinel/pkg/formulas"
)

// Direction is the classified trend of a price series
type Direction string

const (
	Rising   Direction = "rising"
	Falling  Direction = "falling"
	Sideways Direction = "sideways"
	Unknown  Direction = "unknown"
)

// Glyph returns the display glyph of a direction
func (d Direction) Glyph() string {
	switch d {
	case Rising:
		return "🟩"
	case Falling:
		return "🟥"
	case Sideways:
		return "🟨"
	default:
		return "🟪"
	}
}

// Thresholds of each voting method
const (
	simpleWindow        = 3
	simpleBaseThreshold = 0.08
	simpleVolMultiplier = 1.5
	simpleSidewaysRatio = 0.4

	maShortWindow     = 3
	maLongWindow      = 7
	maBaseThreshold   = 0.02
	maVolMultiplier   = 1.5
	maMinimumPrices   = 4
	regressionWindow  = 20
	regressionGrowth  = 0.03
	regressionFall    = -0.03
	momentumWindow    = 5
	momentumThreshold = 0.05
	momentumVolFactor = 2.0
)

// votePriority breaks ties: the first direction with a strictly greater count wins
var votePriority = []Direction{Falling, Rising, Sideways, Unknown}

// Result is the outcome of analyzing one price series
type Result struct {
	Direction       Direction            `json:"direction" msgpack:"direction"`
	Glyph           string               `json:"glyph" msgpack:"glyph"`
	Votes           map[string]Direction `json:"votes" msgpack:"votes"`
	Volatility      float64              `json:"volatility" msgpack:"volatility"`
	DaysSinceChange int                  `json:"days_since_change" msgpack:"days_since_change"`
}

// Volatility is the root mean square of the absolute relative step changes.
// Steps from a non-positive price count as zero change.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			change := math.Abs((prices[i] - prices[i-1]) / prices[i-1])
			sum += change * change
		}
	}
	return math.Sqrt(sum / float64(len(prices)-1))
}

// SimpleComparison compares the first and last of the most recent prices
func SimpleComparison(prices []float64) Direction {
	if len(prices) < 2 {
		return Unknown
	}

	recent := formulas.Tail(prices, simpleWindow)
	first, last := recent[0], recent[len(recent)-1]
	threshold := simpleBaseThreshold + Volatility(recent)*simpleVolMultiplier

	var change float64
	if first > 0 {
		change = math.Abs((last - first) / first)
	}

	switch {
	case change < threshold*simpleSidewaysRatio:
		return Sideways
	case change > threshold && last > first:
		return Rising
	case change > threshold:
		return Falling
	default:
		return Sideways
	}
}

// MovingAverages compares a short and a long simple moving average
func MovingAverages(prices []float64) Direction {
	if len(prices) < maMinimumPrices {
		return Unknown
	}

	short := formulas.LatestSMA(prices, min(maShortWindow, len(prices)/2))
	long := formulas.LatestSMA(prices, min(maLongWindow, len(prices)))
	if short == nil || long == nil || *long == 0 {
		return Unknown
	}

	diff := (*short - *long) / *long
	threshold := maBaseThreshold + Volatility(prices)*maVolMultiplier

	switch {
	case diff > threshold:
		return Rising
	case diff < -threshold:
		return Falling
	default:
		return Sideways
	}
}

// LinearRegression classifies the fitted slope of the recent prices relative to their mean
func LinearRegression(prices []float64) Direction {
	if len(prices) < 3 {
		return Unknown
	}

	recent := formulas.Tail(prices, regressionWindow)
	avg := formulas.Mean(recent)
	if avg == 0 {
		return Unknown
	}

	slope := formulas.LinearRegressionSlope(recent) / avg
	switch {
	case slope > regressionGrowth:
		return Rising
	case slope < regressionFall:
		return Falling
	default:
		return Sideways
	}
}

// Momentum classifies the net move over the recent prices relative to their mean
func Momentum(prices []float64) Direction {
	if len(prices) < 3 {
		return Unknown
	}

	recent := formulas.Tail(prices, momentumWindow)
	avg := formulas.Mean(recent)
	if avg == 0 {
		return Unknown
	}

	momentum := (recent[len(recent)-1] - recent[0]) / avg
	threshold := momentumThreshold + Volatility(recent)*momentumVolFactor

	switch {
	case momentum > threshold:
		return Rising
	case momentum < -threshold:
		return Falling
	default:
		return Sideways
	}
}

// Analyze votes over the four methods. prices are ordered oldest first; dates, when
// given, are parallel to prices and only feed DaysSinceChange.
func Analyze(prices []float64, dates []time.Time) Result {
	result := Result{Direction: Unknown, Volatility: Volatility(prices)}
	if len(prices) < 2 {
		result.Glyph = result.Direction.Glyph()
		return result
	}

	result.Votes = map[string]Direction{
		"simple_comparison": SimpleComparison(prices),
		"moving_averages":   MovingAverages(prices),
		"linear_regression": LinearRegression(prices),
		"momentum":          Momentum(prices),
	}

	counts := make(map[Direction]int, len(votePriority))
	for _, d := range result.Votes {
		counts[d]++
	}

	best := 0
	for _, d := range votePriority {
		if counts[d] > best {
			best = counts[d]
			result.Direction = d
		}
	}

	result.Glyph = result.Direction.Glyph()
	result.DaysSinceChange = DaysSinceChange(prices, dates, result.Direction)
	return result
}

// DaysSinceChange walks back through shorter prefixes of prices until the simple comparison
// disagrees with current, and returns the whole days from that point to the last date.
// Without a disagreement it returns the span of the whole series. The result is at least 1
// unless there is too little data, in which case it is 0.
func DaysSinceChange(prices []float64, dates []time.Time, current Direction) int {
	if len(prices) < 3 || len(dates) < 2 {
		return 0
	}

	last := dates[len(dates)-1]
	for i := len(prices) - 2; i > 0; i-- {
		if SimpleComparison(prices[:i+1]) == current {
			continue
		}
		if i < len(dates) {
			return wholeDays(last.Sub(dates[i]))
		}
		return 1
	}

	return wholeDays(last.Sub(dates[0]))
}

func wholeDays(d time.Duration) int {
	days := int(math.Abs(d.Hours()) / 24)
	if days < 1 {
		return 1
	}
	return days
}
