package audit

import "time"

// EventType constants for audit log entries.
const (
	EventRunStart = "RUN_START"
	EventRunEnd   = "RUN_END"
	EventCommand  = "COMMAND"
	EventBlocked  = "BLOCKED"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	EventType  string    `json:"event_type"`
	Target     string    `json:"target,omitempty"`
	Input      string    `json:"input,omitempty"`
	Status     string    `json:"status,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	EntryHash  string    `json:"entry_hash"`
}
