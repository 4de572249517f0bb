package analytics

import (
	"fmt"
	"math"
)

// Placeholder is shown when a score cannot be formatted
const Placeholder = "—"

// FormatScore renders a score as "<glyph> <value>". Values below 1 are taken as unit
// scale and multiplied by 100, so 0.85 and 85 render the same.
// A percentage score below 1 is indistinguishable from a unit score and gets scaled too.
func FormatScore(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Placeholder
	}

	value := math.Round(score)
	if score < 1 {
		value = math.Round(score * 100)
	}

	return fmt.Sprintf("%s %d", scoreGlyph(value, "🟢"), int(value))
}

// FormatMetaSignal renders a 0-100 meta signal; the top tier uses an alert glyph
func FormatMetaSignal(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Placeholder
	}

	value := math.Round(score)
	return fmt.Sprintf("%s %d", scoreGlyph(value, "🔥"), int(value))
}

func scoreGlyph(value float64, high string) string {
	switch {
	case value >= 75:
		return high
	case value >= 60:
		return "🟡"
	case value >= 40:
		return "⚪"
	default:
		return "🔴"
	}
}
