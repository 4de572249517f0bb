package testing

import (
	"sync"

	"github.com/aristath/itemsentinel/internal/domain"
)

// MockMarketData is an in-memory domain.MarketDataProvider and domain.TrackedItemProvider
type MockMarketData struct {
	mu        sync.RWMutex
	items     map[string]domain.TrackedItem
	snapshots map[string]*domain.ItemMarketSnapshot
	history   map[string][]float64
	err       error
}

// NewMockMarketData creates an empty mock
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{
		items:     make(map[string]domain.TrackedItem),
		snapshots: make(map[string]*domain.ItemMarketSnapshot),
		history:   make(map[string][]float64),
	}
}

// AddItem registers a tracked item with its snapshot and price history
func (m *MockMarketData) AddItem(item domain.TrackedItem, snapshot *domain.ItemMarketSnapshot, prices []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ItemID] = item
	if snapshot != nil {
		m.snapshots[item.ItemID] = snapshot
	}
	if prices != nil {
		m.history[item.ItemID] = prices
	}
}

// SetError makes every call fail with err
func (m *MockMarketData) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetSnapshot returns the registered snapshot or nil
func (m *MockMarketData) GetSnapshot(itemID string) (*domain.ItemMarketSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots[itemID], nil
}

// GetPriceHistory returns the last limit registered prices or nil
func (m *MockMarketData) GetPriceHistory(itemID string, limit int) (*domain.PriceHistorySample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	prices, ok := m.history[itemID]
	if !ok {
		return nil, nil
	}
	if limit > 0 && len(prices) > limit {
		prices = prices[len(prices)-limit:]
	}
	return &domain.PriceHistorySample{ItemID: itemID, Prices: append([]float64(nil), prices...)}, nil
}

// GetTrackedItem returns the registered item or nil
func (m *MockMarketData) GetTrackedItem(itemID string) (*domain.TrackedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// ListTrackedItems returns every registered item
func (m *MockMarketData) ListTrackedItems() ([]domain.TrackedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	items := make([]domain.TrackedItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

// MockHeroStats is a domain.HeroStatsProvider backed by a map
type MockHeroStats struct {
	mu    sync.RWMutex
	stats map[int]domain.HeroStatsRecord
	err   error
}

// NewMockHeroStats creates an empty mock
func NewMockHeroStats() *MockHeroStats {
	return &MockHeroStats{stats: make(map[int]domain.HeroStatsRecord)}
}

// Set registers stats for a hero (all ranks)
func (m *MockHeroStats) Set(record domain.HeroStatsRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[record.HeroID] = record
}

// SetError makes every lookup fail with err
func (m *MockHeroStats) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetLatestStats returns the registered record or nil
func (m *MockHeroStats) GetLatestStats(heroID int, rank domain.RankCategory) (interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	record, ok := m.stats[heroID]
	if !ok {
		return nil, nil
	}
	return record, nil
}
