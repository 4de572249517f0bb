package analytics

// RiskLevel is a discrete risk tier derived from a score, volatility and demand
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// CalculateRiskLevel classifies a 0-100 score with unit-scale volatility and demand.
// Rules are checked in order; the first match wins.
func CalculateRiskLevel(score, volatility, demand float64) RiskLevel {
	switch {
	case score >= 70 && volatility < 0.5 && demand > 0.6:
		return RiskLow
	case score >= 50 && volatility < 0.7 && demand > 0.4:
		return RiskMedium
	default:
		return RiskHigh
	}
}
