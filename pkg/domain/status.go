package domain

import "time"

// BridgeState describes what the bridge is doing right now.
type BridgeState string

const (
	// StateIdle means the bridge is between commands.
	StateIdle BridgeState = "idle"
	// StateRunning means a handler is currently executing on the host loop.
	StateRunning BridgeState = "running"
	// StateError means the most recent command failed. Cleared by the next success.
	StateError BridgeState = "error"
)

// Status is the bridge's published state document.
//
// LastProcessedID is the at-most-once watermark: a restarted bridge reloads
// it before the first poll and never re-executes an id at or below it.
type Status struct {
	State           BridgeState `json:"state"`
	LastProcessedID int64       `json:"last_processed_id"`
	LastError       string      `json:"last_error"`

	// InstanceID identifies one bridge run. It changes on restart, letting
	// agents distinguish "bridge restarted" from "bridge is slow".
	InstanceID string `json:"instance_id,omitempty"`

	// Timestamp is refreshed on every write, including poll-only heartbeats.
	Timestamp time.Time `json:"timestamp"`
}

// NewStatus creates a fresh idle status for a new bridge run.
func NewStatus(instanceID string) *Status {
	return &Status{
		State:      StateIdle,
		InstanceID: instanceID,
		Timestamp:  time.Now().UTC(),
	}
}
