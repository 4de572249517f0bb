package analytics

import (
	"fmt"
	"math"
	"sort"
)

// Metric names used as weight-set keys and component-map keys
const (
	MetricHeroTrend     = "hero_trend"
	MetricVolatility    = "volatility"
	MetricDemandRatio   = "demand_ratio"
	MetricPriceMomentum = "price_momentum"
	MetricLiquidity     = "liquidity"
	MetricSalesTrend    = "sales_trend"
	MetricPriceDrop     = "price_drop"

	MetricProContestRateChange7d = "pro_contest_rate_change_7d"
	MetricPickRateChange7d       = "pick_rate_change_7d"
	MetricPickRateChange24h      = "pick_rate_change_24h"
	MetricPickRate               = "pick_rate"
	MetricWinRate                = "win_rate"
)

// weightSumTolerance is how far a weight set may drift from 1.0 and still validate
const weightSumTolerance = 1e-6

// WeightSet maps a metric name to its contribution weight in a linear combination
type WeightSet map[string]float64

// Get returns the weight for name, 0 when absent
func (w WeightSet) Get(name string) float64 {
	return w[name]
}

// Sum returns the total weight mass of the set
func (w WeightSet) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Clone returns an independent copy of the set
func (w WeightSet) Clone() WeightSet {
	out := make(WeightSet, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// WeightConfig holds every weight set the engine uses. It is loaded once at startup
// and handed to NewEngine; the engine keeps its own copy.
type WeightConfig struct {
	Investment       WeightSet `json:"investment" yaml:"investment" msgpack:"investment"`
	CommonInvestment WeightSet `json:"common_investment" yaml:"common_investment" msgpack:"common_investment"`
	Buyback          WeightSet `json:"buyback" yaml:"buyback" msgpack:"buyback"`
	HeroTrend        WeightSet `json:"hero_trend" yaml:"hero_trend" msgpack:"hero_trend"`
	MetaSignal       WeightSet `json:"meta_signal" yaml:"meta_signal" msgpack:"meta_signal"`
}

// DefaultWeights returns the production weight sets. Each set sums to 1.0.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		Investment: WeightSet{
			MetricHeroTrend:     0.25,
			MetricVolatility:    0.20,
			MetricDemandRatio:   0.20,
			MetricPriceMomentum: 0.15,
			MetricLiquidity:     0.10,
			MetricSalesTrend:    0.10,
		},
		CommonInvestment: WeightSet{
			MetricVolatility:    0.30,
			MetricDemandRatio:   0.25,
			MetricPriceMomentum: 0.20,
			MetricSalesTrend:    0.15,
			MetricLiquidity:     0.10,
		},
		Buyback: WeightSet{
			MetricPriceDrop:     0.30,
			MetricVolatility:    0.20,
			MetricHeroTrend:     0.15,
			MetricDemandRatio:   0.15,
			MetricPriceMomentum: 0.10,
			MetricLiquidity:     0.10,
		},
		HeroTrend: WeightSet{
			MetricProContestRateChange7d: 0.30,
			MetricPickRateChange7d:       0.30,
			MetricPickRate:               0.20,
			MetricWinRate:                0.20,
		},
		MetaSignal: WeightSet{
			MetricPickRateChange24h:      0.50,
			MetricProContestRateChange7d: 0.25,
			MetricPickRateChange7d:       0.25,
		},
	}
}

// requiredMetrics lists the keys each set must carry
var requiredMetrics = map[string][]string{
	"investment":        {MetricHeroTrend, MetricVolatility, MetricDemandRatio, MetricPriceMomentum, MetricLiquidity, MetricSalesTrend},
	"common_investment": {MetricVolatility, MetricDemandRatio, MetricPriceMomentum, MetricSalesTrend, MetricLiquidity},
	"buyback":           {MetricPriceDrop, MetricVolatility, MetricHeroTrend, MetricDemandRatio, MetricPriceMomentum, MetricLiquidity},
	"hero_trend":        {MetricProContestRateChange7d, MetricPickRateChange7d, MetricPickRate, MetricWinRate},
	"meta_signal":       {MetricPickRateChange24h, MetricProContestRateChange7d, MetricPickRateChange7d},
}

func (c WeightConfig) sets() map[string]WeightSet {
	return map[string]WeightSet{
		"investment":        c.Investment,
		"common_investment": c.CommonInvestment,
		"buyback":           c.Buyback,
		"hero_trend":        c.HeroTrend,
		"meta_signal":       c.MetaSignal,
	}
}

// Validate checks that every set has its metrics, no negative weights, and sums to 1.0
func (c WeightConfig) Validate() error {
	sets := c.sets()

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		set := sets[name]
		for _, metric := range requiredMetrics[name] {
			if _, ok := set[metric]; !ok {
				return fmt.Errorf("weight set %s: missing metric %s", name, metric)
			}
		}
		for metric, w := range set {
			if w < 0 || math.IsNaN(w) {
				return fmt.Errorf("weight set %s: invalid weight %v for %s", name, w, metric)
			}
		}
		if sum := set.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
			return fmt.Errorf("weight set %s: weights sum to %.6f, want 1.0", name, sum)
		}
	}

	return nil
}

// Merge returns a copy of c with every weight present in override replacing the default
func (c WeightConfig) Merge(override WeightConfig) WeightConfig {
	merge := func(base, over WeightSet) WeightSet {
		out := base.Clone()
		for k, v := range over {
			out[k] = v
		}
		return out
	}

	return WeightConfig{
		Investment:       merge(c.Investment, override.Investment),
		CommonInvestment: merge(c.CommonInvestment, override.CommonInvestment),
		Buyback:          merge(c.Buyback, override.Buyback),
		HeroTrend:        merge(c.HeroTrend, override.HeroTrend),
		MetaSignal:       merge(c.MetaSignal, override.MetaSignal),
	}
}

// Clone returns a deep copy
func (c WeightConfig) Clone() WeightConfig {
	return c.Merge(WeightConfig{})
}

// Component is one weighted term of a score. When Unavailable is set and RedistributeTo
// names a sibling, the component's weight moves to that sibling so the total weight
// mass is conserved.
type Component struct {
	Name           string
	Value          float64
	Weight         float64
	RedistributeTo string
	Unavailable    bool
}

// resolveWeights returns a copy of components with weight of unavailable terms moved
// to their redistribution targets
func resolveWeights(components []Component) []Component {
	out := make([]Component, len(components))
	copy(out, components)

	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.Name] = i
	}

	for i := range out {
		if !out[i].Unavailable || out[i].RedistributeTo == "" {
			continue
		}
		j, ok := index[out[i].RedistributeTo]
		if !ok || j == i {
			continue
		}
		out[j].Weight += out[i].Weight
		out[i].Weight = 0
	}

	return out
}

// weightedSum resolves weights and returns sum(value * weight)
func weightedSum(components []Component) float64 {
	total := 0.0
	for _, c := range resolveWeights(components) {
		total += c.Value * c.Weight
	}
	return total
}

// componentValues maps component names to their unit-scale values
func componentValues(components []Component) map[string]float64 {
	out := make(map[string]float64, len(components))
	for _, c := range components {
		out[c.Name] = round3(c.Value)
	}
	return out
}

// round3 rounds to 3 decimal places
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
