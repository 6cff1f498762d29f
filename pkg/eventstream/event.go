// Package eventstream publishes a transport-neutral event for every recorded
// chat turn so downstream consumers can follow conversations.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnRecorded is emitted after a chat turn is written to memory.
	EventTypeTurnRecorded = "recall.turn.recorded"
)

// TurnRecordedEvent is the event payload for a recorded turn.
type TurnRecordedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Turn          TurnPayload `json:"turn"`
}

// EventSource identifies where the turn originated.
type EventSource struct {
	Service string `json:"service"`
	Model   string `json:"model,omitempty"`
}

// TurnPayload is the recorded exchange.
type TurnPayload struct {
	UserID            string    `json:"user_id"`
	SessionID         string    `json:"session_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	HasContext        bool      `json:"has_context"`
	Keywords          []string  `json:"keywords,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// NewTurnRecordedEvent stamps a payload with a fresh id and emission time.
func NewTurnRecordedEvent(source EventSource, turn TurnPayload) *TurnRecordedEvent {
	return &TurnRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnRecorded,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Turn:          turn,
	}
}
