package trend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	// twenty percent up every day
	risingPrices = []float64{100, 120, 144, 172.8, 207.36}
	// the same path walked backwards
	fallingPrices = []float64{207.36, 172.8, 144, 120, 100}
	flatPrices    = []float64{100, 100, 100, 100}
)

func dailyDates(n int) []time.Time {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func TestVolatility(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{name: "empty", prices: nil, want: 0},
		{name: "single price", prices: []float64{100}, want: 0},
		{name: "flat", prices: flatPrices, want: 0},
		{name: "ten percent swings", prices: []float64{100, 110, 99}, want: 0.1},
		{name: "step from zero counts as no change", prices: []float64{0, 10, 20}, want: math.Sqrt(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Volatility(tt.prices), 1e-9)
		})
	}
}

func TestMethods(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		simple   Direction
		averages Direction
		linear   Direction
		momentum Direction
	}{
		{
			name: "rising", prices: risingPrices,
			simple: Rising, averages: Sideways, linear: Rising, momentum: Rising,
		},
		{
			name: "falling", prices: fallingPrices,
			simple: Sideways, averages: Sideways, linear: Falling, momentum: Falling,
		},
		{
			name: "flat", prices: flatPrices,
			simple: Sideways, averages: Sideways, linear: Sideways, momentum: Sideways,
		},
		{
			name: "two prices", prices: []float64{100, 200},
			simple: Sideways, averages: Unknown, linear: Unknown, momentum: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.simple, SimpleComparison(tt.prices), "simple comparison")
			assert.Equal(t, tt.averages, MovingAverages(tt.prices), "moving averages")
			assert.Equal(t, tt.linear, LinearRegression(tt.prices), "linear regression")
			assert.Equal(t, tt.momentum, Momentum(tt.prices), "momentum")
		})
	}
}

func TestMethods_ZeroMeanIsUnknown(t *testing.T) {
	zeros := []float64{0, 0, 0, 0}

	assert.Equal(t, Unknown, MovingAverages(zeros))
	assert.Equal(t, Unknown, LinearRegression(zeros))
	assert.Equal(t, Unknown, Momentum(zeros))
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   Direction
		glyph  string
	}{
		{name: "three rising votes", prices: risingPrices, want: Rising, glyph: "🟩"},
		{name: "falling wins a tie with sideways", prices: fallingPrices, want: Falling, glyph: "🟥"},
		{name: "flat", prices: flatPrices, want: Sideways, glyph: "🟨"},
		{name: "too few prices for most methods", prices: []float64{100, 200}, want: Unknown, glyph: "🟪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze(tt.prices, dailyDates(len(tt.prices)))
			assert.Equal(t, tt.want, result.Direction)
			assert.Equal(t, tt.glyph, result.Glyph)
			assert.Len(t, result.Votes, 4)
		})
	}
}

func TestAnalyze_SinglePrice(t *testing.T) {
	result := Analyze([]float64{100}, dailyDates(1))

	assert.Equal(t, Unknown, result.Direction)
	assert.Equal(t, "🟪", result.Glyph)
	assert.Nil(t, result.Votes)
	assert.Zero(t, result.DaysSinceChange)
}

func TestDaysSinceChange(t *testing.T) {
	t.Run("first disagreeing prefix", func(t *testing.T) {
		// the two-price prefix is sideways, the longer ones rise
		assert.Equal(t, 3, DaysSinceChange(risingPrices, dailyDates(5), Rising))
	})

	t.Run("no change spans the whole series", func(t *testing.T) {
		assert.Equal(t, 3, DaysSinceChange(flatPrices, dailyDates(4), Sideways))
	})

	t.Run("sub-day span rounds up to one", func(t *testing.T) {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		dates := []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour), start.Add(3 * time.Hour)}
		assert.Equal(t, 1, DaysSinceChange(flatPrices, dates, Sideways))
	})

	t.Run("too little data", func(t *testing.T) {
		assert.Zero(t, DaysSinceChange([]float64{100, 110}, dailyDates(2), Rising))
		assert.Zero(t, DaysSinceChange(risingPrices, dailyDates(1), Rising))
	})
}

func TestDirectionGlyph(t *testing.T) {
	assert.Equal(t, "🟩", Rising.Glyph())
	assert.Equal(t, "🟥", Falling.Glyph())
	assert.Equal(t, "🟨", Sideways.Glyph())
	assert.Equal(t, "🟪", Unknown.Glyph())
	assert.Equal(t, "🟪", Direction("").Glyph())
}
