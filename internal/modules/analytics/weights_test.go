package analytics

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights_Valid(t *testing.T) {
	weights := DefaultWeights()
	require.NoError(t, weights.Validate())

	for name, set := range weights.sets() {
		assert.InDelta(t, 1.0, set.Sum(), 1e-9, name)
	}
}

func TestWeightConfig_Validate(t *testing.T) {
	t.Run("sum off", func(t *testing.T) {
		weights := DefaultWeights().Merge(WeightConfig{Investment: WeightSet{MetricHeroTrend: 0.5}})
		assert.ErrorContains(t, weights.Validate(), "investment")
	})

	t.Run("missing metric", func(t *testing.T) {
		weights := DefaultWeights()
		delete(weights.Buyback, MetricPriceDrop)
		assert.ErrorContains(t, weights.Validate(), "missing metric price_drop")
	})

	t.Run("negative weight", func(t *testing.T) {
		weights := DefaultWeights().Merge(WeightConfig{MetaSignal: WeightSet{
			MetricPickRateChange24h: 1.5, MetricProContestRateChange7d: -0.25, MetricPickRateChange7d: -0.25,
		}})
		assert.ErrorContains(t, weights.Validate(), "invalid weight")
	})
}

func TestWeightConfig_MergeDoesNotMutate(t *testing.T) {
	base := DefaultWeights()
	merged := base.Merge(WeightConfig{HeroTrend: WeightSet{MetricPickRate: 0.1, MetricWinRate: 0.3}})

	assert.Equal(t, 0.20, base.HeroTrend[MetricPickRate])
	assert.Equal(t, 0.1, merged.HeroTrend[MetricPickRate])
	assert.Equal(t, 0.3, merged.HeroTrend[MetricWinRate])
	require.NoError(t, merged.Validate())
}

func TestNewEngine_CopiesWeights(t *testing.T) {
	weights := DefaultWeights()
	engine := NewEngine(weights, nil, zerolog.Nop())

	weights.Investment[MetricHeroTrend] = 0.9
	assert.Equal(t, 0.25, engine.Weights().Investment[MetricHeroTrend])

	copied := engine.Weights()
	copied.Buyback[MetricPriceDrop] = 0
	assert.Equal(t, 0.30, engine.Weights().Buyback[MetricPriceDrop])
}
