package formulas

import (
	"github.com/markcheno/go-talib"
)

// LatestSMA returns the simple moving average of the last `length` prices.
// Returns nil when there is not enough data.
func LatestSMA(prices []float64, length int) *float64 {
	if length <= 0 || len(prices) < length {
		return nil
	}
	if length == 1 {
		v := prices[len(prices)-1]
		return &v
	}

	sma := talib.Sma(prices, length)
	if len(sma) == 0 || isNaN(sma[len(sma)-1]) {
		return nil
	}

	result := sma[len(sma)-1]
	return &result
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
