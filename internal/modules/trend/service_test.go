package trend

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/modules/market"
	testutil "github.com/aristath/itemsentinel/internal/testing"
)

type failingHistory struct{}

func (failingHistory) GetDatedHistory(string, int) ([]domain.PricePoint, error) {
	return nil, errors.New("disk on fire")
}

func TestService_Analyze(t *testing.T) {
	repo := market.NewRepository(testutil.NewMemoryDB(t, "market"), zerolog.Nop())
	for i, date := range dailyDates(len(risingPrices)) {
		require.NoError(t, repo.AppendPrice("item-manta-style", risingPrices[i], date))
	}

	report, err := NewService(repo, 0, zerolog.Nop()).Analyze("item-manta-style")
	require.NoError(t, err)

	assert.Equal(t, "item-manta-style", report.ItemID)
	assert.Equal(t, Rising, report.Direction)
	assert.Equal(t, 5, report.Points)
	assert.Equal(t, 3, report.DaysSinceChange)
	assert.Equal(t, 207.36, report.Latest)
	assert.Equal(t, 100.0, report.Min)
	assert.Equal(t, 207.36, report.Max)
	assert.InDelta(t, 148.832, report.MeanPrice, 1e-9)
	assert.Equal(t, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), report.From)
	assert.Equal(t, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC), report.To)
}

func TestService_AnalyzeUsesMostRecentPoints(t *testing.T) {
	repo := market.NewRepository(testutil.NewMemoryDB(t, "market"), zerolog.Nop())
	for i, date := range dailyDates(len(risingPrices)) {
		require.NoError(t, repo.AppendPrice("item", risingPrices[i], date))
	}

	report, err := NewService(repo, 2, zerolog.Nop()).Analyze("item")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Points)
	assert.Equal(t, 172.8, report.Min)
}

func TestService_AnalyzeErrors(t *testing.T) {
	repo := market.NewRepository(testutil.NewMemoryDB(t, "market"), zerolog.Nop())

	_, err := NewService(repo, 0, zerolog.Nop()).Analyze("missing")
	assert.ErrorIs(t, err, ErrNoHistory)

	_, err = NewService(failingHistory{}, 0, zerolog.Nop()).Analyze("item")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoHistory)
	assert.Contains(t, err.Error(), "disk on fire")
}
