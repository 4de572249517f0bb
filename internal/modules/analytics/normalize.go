// Package analytics turns item market telemetry and hero meta statistics into bounded
// investment scores. Every function here is pure and safe for concurrent use.
package analytics

import "math"

// NormalizeToRange linearly maps value from [min, max] onto [targetMin, targetMax],
// clamping the result to the target range. A degenerate source range (min == max)
// returns the midpoint of the target range.
func NormalizeToRange(value, min, max, targetMin, targetMax float64) float64 {
	if max == min {
		return (targetMin + targetMax) / 2
	}

	normalized := ((value-min)/(max-min))*(targetMax-targetMin) + targetMin
	return clamp(normalized, targetMin, targetMax)
}

// NormalizeUnit is NormalizeToRange onto [0, 1]
func NormalizeUnit(value, min, max float64) float64 {
	return NormalizeToRange(value, min, max, 0, 1)
}

// NormalizeMetric maps value from [min, max] onto [0, 1]. With inverse set the
// result is flipped (1 - normalized) for metrics where lower is better.
// A degenerate range returns 0.5.
func NormalizeMetric(value, min, max float64, inverse bool) float64 {
	if max == min {
		return 0.5
	}

	normalized := clamp01((value - min) / (max - min))
	if inverse {
		return 1 - normalized
	}
	return normalized
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// toPercentScore converts a unit score to a rounded integer on [0, 100]
func toPercentScore(unit float64) int {
	return int(math.Round(clamp(unit*100, 0, 100)))
}
