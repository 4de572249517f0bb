package events

// EventData is implemented by every typed event payload
type EventData interface {
	EventType() EventType
}

// ScoreComputedData is published after an item is scored
type ScoreComputedData struct {
	RunID           string   `json:"run_id"`
	ItemID          string   `json:"item_id"`
	InvestmentScore int      `json:"investment_score"`
	BuybackScore    *int     `json:"buyback_score,omitempty"`
	MetaSignal      int      `json:"meta_signal"`
	RiskLevel       string   `json:"risk_level"`
	Bonuses         []string `json:"bonuses,omitempty"`
}

// EventType returns ScoreComputed
func (d *ScoreComputedData) EventType() EventType {
	return ScoreComputed
}

// MetaSignalAlertData is published when a hero's meta signal reaches the alert threshold
type MetaSignalAlertData struct {
	ItemID     string `json:"item_id"`
	HeroID     int    `json:"hero_id"`
	Rank       string `json:"rank_category"`
	MetaSignal int    `json:"meta_signal"`
	Threshold  int    `json:"threshold"`
}

// EventType returns MetaSignalAlert
func (d *MetaSignalAlertData) EventType() EventType {
	return MetaSignalAlert
}

// PortfolioSnapshotSavedData is published after a portfolio history row is written
type PortfolioSnapshotSavedData struct {
	SnapshotID         string  `json:"snapshot_id"`
	TotalCurrentValue  float64 `json:"total_current_value"`
	TotalProfitPercent float64 `json:"total_profit_percent"`
	PositionCount      int     `json:"position_count"`
}

// EventType returns PortfolioSnapshotSaved
func (d *PortfolioSnapshotSavedData) EventType() EventType {
	return PortfolioSnapshotSaved
}

// BackupCompletedData is published after a cloud backup upload
type BackupCompletedData struct {
	Archive   string `json:"archive"`
	SizeBytes int64  `json:"size_bytes"`
	Pruned    int    `json:"pruned"`
}

// EventType returns BackupCompleted
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}
