package market

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/domain"
	testutil "github.com/aristath/itemsentinel/internal/testing"
)

func newTestRepository(t *testing.T) *Repository {
	return NewRepository(testutil.NewMemoryDB(t, "market"), zerolog.Nop())
}

func TestSnapshot_RoundTripKeepsUnknownFields(t *testing.T) {
	repo := newTestRepository(t)

	snapshot := domain.ItemMarketSnapshot{
		ItemID:      "item-1",
		UpdatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Sold24h:     domain.Float(0),
		OfferVolume: domain.Float(42),
		PriceLatest: domain.Float(12.5),
	}
	require.NoError(t, repo.UpsertSnapshot(snapshot))

	got, err := repo.GetSnapshot("item-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "item-1", got.ItemID)
	assert.Equal(t, snapshot.UpdatedAt, got.UpdatedAt)
	require.NotNil(t, got.Sold24h)
	assert.Equal(t, 0.0, *got.Sold24h, "explicit zero must survive")
	assert.Equal(t, 42.0, *got.OfferVolume)
	assert.Equal(t, 12.5, *got.PriceLatest)
	assert.Nil(t, got.Sold7d)
	assert.Nil(t, got.HoursToSold)
	assert.Nil(t, got.PriceLatestSell30d)
}

func TestSnapshot_FullFixture(t *testing.T) {
	repo := newTestRepository(t)
	fixture := testutil.NewSnapshotFixture("item-2")

	require.NoError(t, repo.UpsertSnapshot(fixture))

	got, err := repo.GetSnapshot("item-2")
	require.NoError(t, err)
	assert.Equal(t, fixture, *got)
}

func TestSnapshot_UpsertReplaces(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.UpsertSnapshot(domain.ItemMarketSnapshot{ItemID: "item-1", PriceLatest: domain.Float(10)}))
	require.NoError(t, repo.UpsertSnapshot(domain.ItemMarketSnapshot{ItemID: "item-1", PriceAvg: domain.Float(11)}))

	got, err := repo.GetSnapshot("item-1")
	require.NoError(t, err)
	assert.Nil(t, got.PriceLatest)
	assert.Equal(t, 11.0, *got.PriceAvg)
}

func TestSnapshot_Missing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetSnapshot("nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.UpsertSnapshot(domain.ItemMarketSnapshot{}))
}

func TestPriceHistory(t *testing.T) {
	repo := newTestRepository(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, price := range []float64{10, 11, 12, 13, 14} {
		require.NoError(t, repo.AppendPrice("item-1", price, start.AddDate(0, 0, i)))
	}
	require.NoError(t, repo.AppendPrice("item-2", 99, start))

	sample, err := repo.GetPriceHistory("item-1", 3)
	require.NoError(t, err)
	require.NotNil(t, sample)
	assert.Equal(t, "item-1", sample.ItemID)
	assert.Equal(t, []float64{12, 13, 14}, sample.Prices)

	all, err := repo.GetPriceHistory("item-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12, 13, 14}, all.Prices)

	points, err := repo.GetDatedHistory("item-1", 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, start.AddDate(0, 0, 3), points[0].RecordedAt)
	assert.Equal(t, 14.0, points[1].Price)

	none, err := repo.GetPriceHistory("item-3", 10)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAppendPrice_RejectsNonPositive(t *testing.T) {
	repo := newTestRepository(t)

	for _, price := range []float64{0, -1} {
		err := repo.AppendPrice("item-1", price, time.Now())
		assert.ErrorIs(t, err, ErrInvalidPrice)
	}
}

func TestTrackedItems(t *testing.T) {
	repo := newTestRepository(t)

	for _, item := range testutil.NewTrackedItemFixtures() {
		require.NoError(t, repo.UpsertTrackedItem(item))
	}

	items, err := repo.ListTrackedItems()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "item-dragonclaw-hook", items[0].ItemID)

	hook, err := repo.GetTrackedItem("item-dragonclaw-hook")
	require.NoError(t, err)
	require.NotNil(t, hook)
	assert.Equal(t, domain.ItemCategoryHero, hook.Category)
	assert.Equal(t, testutil.HeroPudge, hook.HeroID)
	assert.Equal(t, domain.RankAll, hook.Rank)

	hook.Name = "Dragonclaw Hook (Immortal)"
	require.NoError(t, repo.UpsertTrackedItem(*hook))
	updated, err := repo.GetTrackedItem("item-dragonclaw-hook")
	require.NoError(t, err)
	assert.Equal(t, "Dragonclaw Hook (Immortal)", updated.Name)

	require.NoError(t, repo.DeleteTrackedItem("item-dragonclaw-hook"))
	gone, err := repo.GetTrackedItem("item-dragonclaw-hook")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUpsertTrackedItem_Validation(t *testing.T) {
	repo := newTestRepository(t)

	assert.Error(t, repo.UpsertTrackedItem(domain.TrackedItem{Category: domain.ItemCategoryCommon}))
	assert.Error(t, repo.UpsertTrackedItem(domain.TrackedItem{ItemID: "x", Category: "Weapon"}))
	assert.Error(t, repo.UpsertTrackedItem(domain.TrackedItem{ItemID: "x", Category: domain.ItemCategoryHero, Rank: "Legend"}))
}

func TestRepository_SatisfiesProviders(t *testing.T) {
	var _ domain.MarketDataProvider = (*Repository)(nil)
	var _ domain.TrackedItemProvider = (*Repository)(nil)
}
