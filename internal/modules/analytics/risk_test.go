package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRiskLevel(t *testing.T) {
	tests := []struct {
		name                      string
		score, volatility, demand float64
		want                      RiskLevel
	}{
		{name: "low", score: 70, volatility: 0.4, demand: 0.7, want: RiskLow},
		{name: "score just under low", score: 69, volatility: 0.4, demand: 0.7, want: RiskMedium},
		{name: "volatility at low boundary", score: 70, volatility: 0.5, demand: 0.7, want: RiskMedium},
		{name: "demand at low boundary", score: 70, volatility: 0.4, demand: 0.6, want: RiskMedium},
		{name: "medium", score: 50, volatility: 0.69, demand: 0.41, want: RiskMedium},
		{name: "score just under medium", score: 49, volatility: 0.1, demand: 0.9, want: RiskHigh},
		{name: "too volatile", score: 80, volatility: 0.7, demand: 0.9, want: RiskHigh},
		{name: "no demand", score: 80, volatility: 0.1, demand: 0.4, want: RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateRiskLevel(tt.score, tt.volatility, tt.demand))
		})
	}
}
