package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/itemsentinel/internal/domain"
)

var (
	// ErrNoHeroStats means the provider has nothing for the hero/rank pair
	ErrNoHeroStats = errors.New("no hero stats available")
	// ErrMalformedHeroStats means the provider payload could not be decoded
	ErrMalformedHeroStats = errors.New("malformed hero stats")
)

// ParseHeroStats decodes a provider payload. It accepts a HeroStatsRecord (value or
// pointer), a JSON document as string/bytes, or a generic decoded JSON object.
func ParseHeroStats(payload interface{}) (*domain.HeroStatsRecord, error) {
	switch v := payload.(type) {
	case nil:
		return nil, ErrNoHeroStats
	case domain.HeroStatsRecord:
		return &v, nil
	case *domain.HeroStatsRecord:
		if v == nil {
			return nil, ErrNoHeroStats
		}
		record := *v
		return &record, nil
	case string:
		return decodeHeroStats([]byte(v))
	case []byte:
		return decodeHeroStats(v)
	case json.RawMessage:
		return decodeHeroStats(v)
	case map[string]interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeroStats, err)
		}
		return decodeHeroStats(data)
	default:
		return nil, fmt.Errorf("%w: unsupported payload type %T", ErrMalformedHeroStats, payload)
	}
}

func decodeHeroStats(data []byte) (*domain.HeroStatsRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrNoHeroStats
	}

	var record domain.HeroStatsRecord
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeroStats, err)
	}
	return &record, nil
}

// latestHeroStats fetches and decodes the newest stats. Any failure is logged and
// reported as "no data" so scoring can fall back instead of failing.
func (e *Engine) latestHeroStats(heroID int, rank domain.RankCategory) (*domain.HeroStatsRecord, bool) {
	if heroID <= 0 || e.heroStats == nil {
		return nil, false
	}

	payload, err := e.heroStats.GetLatestStats(heroID, rank)
	if err != nil {
		e.log.Debug().Err(err).Int("hero_id", heroID).Str("rank", string(rank)).Msg("Hero stats lookup failed")
		return nil, false
	}

	stats, err := ParseHeroStats(payload)
	if err != nil {
		if errors.Is(err, ErrMalformedHeroStats) {
			e.log.Debug().Err(err).Int("hero_id", heroID).Str("rank", string(rank)).Msg("Ignoring malformed hero stats")
		}
		return nil, false
	}

	return stats, true
}

// heroTrendComponents builds the weighted terms of the hero trend score.
// A zero pro-contest delta means pro data is missing; its weight moves to the 7d pick-rate delta.
func heroTrendComponents(stats *domain.HeroStatsRecord, weights WeightSet) []Component {
	return []Component{
		{
			Name:           MetricProContestRateChange7d,
			Value:          NormalizeUnit(stats.ProContestRateChange7d, -0.3, 0.3),
			Weight:         weights.Get(MetricProContestRateChange7d),
			RedistributeTo: MetricPickRateChange7d,
			Unavailable:    stats.ProContestRateChange7d == 0,
		},
		{
			Name:   MetricPickRateChange7d,
			Value:  NormalizeUnit(stats.PickRateChange7d, -0.3, 0.3),
			Weight: weights.Get(MetricPickRateChange7d),
		},
		{
			Name:   MetricPickRate,
			Value:  NormalizeUnit((stats.PickRatePercent-50)/50, -1, 1),
			Weight: weights.Get(MetricPickRate),
		},
		{
			Name:   MetricWinRate,
			Value:  NormalizeUnit((stats.WinRate-50)/50, -1, 1),
			Weight: weights.Get(MetricWinRate),
		},
	}
}

// metaSignalComponents builds the weighted terms of the meta signal.
// A zero 24h pick-rate delta means the short window is missing; its weight moves to the 7d delta.
func metaSignalComponents(stats *domain.HeroStatsRecord, weights WeightSet) []Component {
	return []Component{
		{
			Name:           MetricPickRateChange24h,
			Value:          NormalizeUnit(stats.PickRateChange24h, -0.5, 0.5),
			Weight:         weights.Get(MetricPickRateChange24h),
			RedistributeTo: MetricPickRateChange7d,
			Unavailable:    stats.PickRateChange24h == 0,
		},
		{
			Name:   MetricProContestRateChange7d,
			Value:  NormalizeUnit(stats.ProContestRateChange7d, -0.3, 0.3),
			Weight: weights.Get(MetricProContestRateChange7d),
		},
		{
			Name:   MetricPickRateChange7d,
			Value:  NormalizeUnit(stats.PickRateChange7d, -0.3, 0.3),
			Weight: weights.Get(MetricPickRateChange7d),
		},
	}
}

// HeroTrendScore rates a hero's meta trajectory (0-1). Returns 0.5 when the hero is
// unknown or its stats cannot be read.
func (e *Engine) HeroTrendScore(heroID int, rank domain.RankCategory) float64 {
	stats, ok := e.latestHeroStats(heroID, rank)
	if !ok {
		return 0.5
	}

	return clamp01(weightedSum(heroTrendComponents(stats, e.weights.HeroTrend)))
}

// MetaSignal is a short-horizon alert score for patch-driven hero surges (0-100).
// Unlike HeroTrendScore it returns 0, not a neutral value, when data is missing.
func (e *Engine) MetaSignal(heroID int, rank domain.RankCategory) int {
	stats, ok := e.latestHeroStats(heroID, rank)
	if !ok {
		return 0
	}

	return toPercentScore(weightedSum(metaSignalComponents(stats, e.weights.MetaSignal)))
}
