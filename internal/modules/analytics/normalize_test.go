package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToRange(t *testing.T) {
	tests := []struct {
		name                           string
		value, min, max, tMin, tMax, w float64
	}{
		{name: "midpoint", value: 5, min: 0, max: 10, tMin: 0, tMax: 1, w: 0.5},
		{name: "below range clamps", value: -5, min: 0, max: 10, tMin: 0, tMax: 1, w: 0},
		{name: "above range clamps", value: 15, min: 0, max: 10, tMin: 0, tMax: 1, w: 1},
		{name: "symmetric source", value: 0.1, min: -0.5, max: 0.5, tMin: 0, tMax: 1, w: 0.6},
		{name: "custom target", value: 5, min: 0, max: 10, tMin: 0, tMax: 100, w: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.w, NormalizeToRange(tt.value, tt.min, tt.max, tt.tMin, tt.tMax), 1e-9)
		})
	}
}

func TestNormalizeToRange_DegenerateRangeReturnsTargetMidpoint(t *testing.T) {
	for _, v := range []float64{-100, 0, 3, 42} {
		assert.Equal(t, 50.0, NormalizeToRange(v, 3, 3, 0, 100))
		assert.Equal(t, 3.0, NormalizeToRange(v, 7, 7, 2, 4))
	}
}

func TestNormalizeToRange_Monotonic(t *testing.T) {
	prev := NormalizeToRange(-2, -1, 1, 0, 1)
	for v := -2.0; v <= 2.0; v += 0.05 {
		got := NormalizeToRange(v, -1, 1, 0, 1)
		assert.GreaterOrEqual(t, got, prev, "value %v", v)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
}

func TestNormalizeMetric(t *testing.T) {
	assert.InDelta(t, 0.2, NormalizeMetric(2, 0, 10, false), 1e-9)
	assert.InDelta(t, 0.8, NormalizeMetric(2, 0, 10, true), 1e-9)
	assert.Equal(t, 0.5, NormalizeMetric(2, 4, 4, false))
	assert.Equal(t, 0.5, NormalizeMetric(2, 4, 4, true))
	assert.Equal(t, 1.0, NormalizeMetric(15, 0, 10, false))
	assert.Equal(t, 0.0, NormalizeMetric(15, 0, 10, true))
}
