package analytics

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/domain"
)

func staticHeroStats(payload interface{}, err error) domain.HeroStatsProvider {
	return domain.HeroStatsProviderFunc(func(heroID int, rank domain.RankCategory) (interface{}, error) {
		return payload, err
	})
}

func newTestEngine(provider domain.HeroStatsProvider) *Engine {
	return NewEngine(DefaultWeights(), provider, zerolog.Nop())
}

var risingHero = domain.HeroStatsRecord{
	HeroID:                 14,
	RankCategory:           domain.RankHigh,
	PickRatePercent:        60,
	PickRateChange24h:      0.25,
	PickRateChange7d:       0.15,
	WinRate:                55,
	ProContestRateChange7d: 0.15,
}

func TestParseHeroStats(t *testing.T) {
	record, err := ParseHeroStats(`{"pickRatePercent":60,"winRate":55,"pickRateChange7d":0.15}`)
	require.NoError(t, err)
	assert.Equal(t, 60.0, record.PickRatePercent)
	assert.Equal(t, 55.0, record.WinRate)
	assert.Equal(t, 0.15, record.PickRateChange7d)

	record, err = ParseHeroStats(&risingHero)
	require.NoError(t, err)
	assert.Equal(t, risingHero, *record)

	record, err = ParseHeroStats(map[string]interface{}{"winRate": 48.5})
	require.NoError(t, err)
	assert.Equal(t, 48.5, record.WinRate)

	for _, empty := range []interface{}{nil, "", "null", []byte("  "), (*domain.HeroStatsRecord)(nil)} {
		_, err = ParseHeroStats(empty)
		assert.ErrorIs(t, err, ErrNoHeroStats)
	}

	_, err = ParseHeroStats("{not json")
	assert.ErrorIs(t, err, ErrMalformedHeroStats)

	_, err = ParseHeroStats(42)
	assert.ErrorIs(t, err, ErrMalformedHeroStats)
}

func TestHeroTrendScore(t *testing.T) {
	engine := newTestEngine(staticHeroStats(risingHero, nil))
	assert.InDelta(t, 0.68, engine.HeroTrendScore(14, domain.RankHigh), 1e-9)
}

func TestHeroTrendScore_JSONPayload(t *testing.T) {
	payload := `{"proContestRateChange7d":0.15,"pickRateChange7d":0.15,"pickRatePercent":60,"winRate":55}`
	engine := newTestEngine(staticHeroStats(payload, nil))
	assert.InDelta(t, 0.68, engine.HeroTrendScore(14, domain.RankAll), 1e-9)
}

func TestHeroTrendScore_MissingProDataRedistributes(t *testing.T) {
	stats := domain.HeroStatsRecord{PickRatePercent: 60, WinRate: 55, PickRateChange7d: 0.06}
	engine := newTestEngine(staticHeroStats(stats, nil))

	// pro-contest weight (0.30) moves onto the 7d pick-rate delta
	want := 0.6*0.60 + 0.6*0.20 + 0.55*0.20
	assert.InDelta(t, want, engine.HeroTrendScore(14, domain.RankHigh), 1e-9)
}

func TestHeroTrendScore_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.HeroStatsProvider
		heroID   int
	}{
		{name: "nil provider", provider: nil, heroID: 14},
		{name: "unknown hero", provider: staticHeroStats(risingHero, nil), heroID: 0},
		{name: "no data", provider: staticHeroStats(nil, nil), heroID: 14},
		{name: "provider error", provider: staticHeroStats(nil, errors.New("boom")), heroID: 14},
		{name: "malformed payload", provider: staticHeroStats("{not json", nil), heroID: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(tt.provider)
			assert.Equal(t, 0.5, engine.HeroTrendScore(tt.heroID, domain.RankHigh))
			assert.Equal(t, 0, engine.MetaSignal(tt.heroID, domain.RankHigh))
		})
	}
}

func TestMetaSignal(t *testing.T) {
	engine := newTestEngine(staticHeroStats(risingHero, nil))
	assert.Equal(t, 75, engine.MetaSignal(14, domain.RankHigh))
}

func TestMetaSignal_Missing24hRedistributes(t *testing.T) {
	stats := domain.HeroStatsRecord{ProContestRateChange7d: 0.15, PickRateChange7d: 0.06}
	engine := newTestEngine(staticHeroStats(stats, nil))

	// 0.75*0.25 + 0.6*0.75 = 0.6375
	assert.Equal(t, 64, engine.MetaSignal(14, domain.RankHigh))
}

func TestResolveWeights_ConservesMass(t *testing.T) {
	components := []Component{
		{Name: "a", Value: 0.2, Weight: 0.3, RedistributeTo: "b", Unavailable: true},
		{Name: "b", Value: 0.8, Weight: 0.3},
		{Name: "c", Value: 0.5, Weight: 0.4, RedistributeTo: "missing", Unavailable: true},
	}

	resolved := resolveWeights(components)

	total := 0.0
	for _, c := range resolved {
		total += c.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.0, resolved[0].Weight)
	assert.InDelta(t, 0.6, resolved[1].Weight, 1e-9)
	assert.Equal(t, 0.4, resolved[2].Weight)

	// input is left untouched
	assert.Equal(t, 0.3, components[0].Weight)
	assert.InDelta(t, 0.8*0.6+0.5*0.4, weightedSum(components), 1e-9)
}
