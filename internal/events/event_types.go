package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSnapshotRefreshed EventType = "snapshot_refreshed"
	EventSnapshotFailed    EventType = "snapshot_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SnapshotRefreshedPayload payload.
type SnapshotRefreshedPayload struct {
	Queues   int           `json:"queues"`
	Tickets  int           `json:"tickets"`
	Users    int           `json:"users"`
	Issues   int           `json:"issues"`
	Duration time.Duration `json:"duration"`
}

// SnapshotFailedPayload payload.
type SnapshotFailedPayload struct {
	Error string `json:"error"`
}
