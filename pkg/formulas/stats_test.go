package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndPopStdDev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(data), 1e-9)
	assert.InDelta(t, 2.0, PopStdDev(data), 1e-9)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopStdDev(nil))
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, 1, 8, 2})
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 8.0, hi)

	lo, hi = MinMax(nil)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestPositiveOnly(t *testing.T) {
	assert.Equal(t, []float64{1, 3}, PositiveOnly([]float64{0, 1, -2, 3}))
	assert.Empty(t, PositiveOnly([]float64{0, -1}))
}

func TestTail(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, []float64{4, 5}, Tail(data, 2))
	assert.Equal(t, data, Tail(data, 10))
	assert.Empty(t, Tail(data, 0))
}

func TestLinearRegressionSlope(t *testing.T) {
	assert.InDelta(t, 2.0, LinearRegressionSlope([]float64{1, 3, 5, 7}), 1e-9)
	assert.InDelta(t, -1.0, LinearRegressionSlope([]float64{10, 9, 8}), 1e-9)
	assert.Equal(t, 0.0, LinearRegressionSlope([]float64{5}))
}

func TestLatestSMA(t *testing.T) {
	sma := LatestSMA([]float64{1, 2, 3, 4, 5, 6}, 3)
	require.NotNil(t, sma)
	assert.InDelta(t, 5.0, *sma, 1e-9)

	assert.Nil(t, LatestSMA([]float64{1, 2}, 3))

	single := LatestSMA([]float64{1, 2}, 1)
	require.NotNil(t, single)
	assert.Equal(t, 2.0, *single)
}
