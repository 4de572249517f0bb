package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/modules/market"
	"github.com/aristath/itemsentinel/internal/modules/trend"
	testutil "github.com/aristath/itemsentinel/internal/testing"
)

func TestHandleGetItemTrend(t *testing.T) {
	repo := market.NewRepository(testutil.NewMemoryDB(t, "market"), zerolog.Nop())
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, price := range []float64{100, 100, 100, 100} {
		require.NoError(t, repo.AppendPrice("flat", price, start.AddDate(0, 0, i)))
	}

	router := chi.NewRouter()
	router.Route("/api", NewHandlers(trend.NewService(repo, 0, zerolog.Nop()), zerolog.Nop()).RegisterRoutes)

	t.Run("known item", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend/items/flat", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "sideways", body["direction"])
		assert.Equal(t, "🟨", body["glyph"])
		assert.Equal(t, float64(4), body["points"])
		assert.Equal(t, float64(3), body["days_since_change"])
	})

	t.Run("no history", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend/items/unknown", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
