package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/modules/portfolio"
	testutil "github.com/aristath/itemsentinel/internal/testing"
)

func setupRouter(t *testing.T) http.Handler {
	db := testutil.NewMemoryDB(t, "portfolio")
	service := portfolio.NewService(
		portfolio.NewPositionRepository(db, zerolog.Nop()),
		portfolio.NewHistoryRepository(db, zerolog.Nop()),
		nil,
		zerolog.Nop(),
	)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(service, zerolog.Nop()).RegisterRoutes)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPortfolioRoutes(t *testing.T) {
	router := setupRouter(t)

	// nothing held yet
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/api/portfolio/history", "").Code)

	rec := serve(router, http.MethodPut, "/api/portfolio/positions/hook",
		`{"quantity":2,"total_investment":100,"current_value_after_fee":130,"profit":30,"profit_percent_after_fee":0.3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, "hook", stored["item_id"])

	rec = serve(router, http.MethodGet, "/api/portfolio/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics portfolio.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.InDelta(t, 0.3, metrics.TotalProfitPercent, 1e-9)
	assert.Equal(t, 1, metrics.PositionCount)

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/api/portfolio/history", "").Code)

	rec = serve(router, http.MethodGet, "/api/portfolio/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		History []portfolio.HistoryEntry `json:"history"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, 1, history.Count)
	assert.InDelta(t, 130.0, history.History[0].TotalCurrentValue, 1e-9)

	rec = serve(router, http.MethodGet, "/api/portfolio/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hook"`)
}

func TestPortfolioRoutes_BadInput(t *testing.T) {
	router := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPut, "/api/portfolio/positions/hook", `{"qty":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/portfolio/history?limit=-1", "").Code)
}
