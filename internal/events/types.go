// Package events provides the in-process event bus used to push scoring and portfolio
// activity to websocket clients and other listeners.
package events

import (
	"encoding/json"
	"time"
)

// EventType identifies an event
type EventType string

const (
	ScoreComputed          EventType = "SCORE_COMPUTED"
	MetaSignalAlert        EventType = "META_SIGNAL_ALERT"
	PortfolioSnapshotSaved EventType = "PORTFOLIO_SNAPSHOT_SAVED"
	BackupCompleted        EventType = "BACKUP_COMPLETED"
)

// AllTypes lists every event type the bus carries
func AllTypes() []EventType {
	return []EventType{ScoreComputed, MetaSignalAlert, PortfolioSnapshotSaved, BackupCompleted}
}

// Event is a published occurrence. Data holds the JSON form of an EventData value.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// NewEvent builds an event from typed data
func NewEvent(module string, data EventData) Event {
	return Event{
		Type:      data.EventType(),
		Timestamp: time.Now().UTC(),
		Data:      toMap(data),
		Module:    module,
	}
}

// Decode unmarshals the event payload into v
func (e Event) Decode(v interface{}) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func toMap(data EventData) map[string]interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
