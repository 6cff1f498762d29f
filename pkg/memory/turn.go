package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Turn is one user message and assistant reply. Turns are immutable once
// written; the ledger only appends or evicts them.
type Turn struct {
	Timestamp         time.Time `json:"timestamp"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	SessionID         string    `json:"session_id"`
}

// naive layouts written by older producers without a zone; read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type turnRecord struct {
	Timestamp         json.RawMessage `json:"timestamp"`
	UserMessage       string          `json:"user_message"`
	AssistantResponse string          `json:"assistant_response"`
	SessionID         string          `json:"session_id"`
}

// MarshalJSON writes the timestamp as RFC 3339 in UTC.
func (t Turn) MarshalJSON() ([]byte, error) {
	ts := ""
	if !t.Timestamp.IsZero() {
		ts = t.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	return json.Marshal(struct {
		Timestamp         string `json:"timestamp"`
		UserMessage       string `json:"user_message"`
		AssistantResponse string `json:"assistant_response"`
		SessionID         string `json:"session_id"`
	}{ts, t.UserMessage, t.AssistantResponse, t.SessionID})
}

// UnmarshalJSON accepts RFC 3339 timestamps, zone-less ISO-8601 timestamps
// and numeric epoch seconds. A missing or empty timestamp decodes to the
// zero time.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var rec turnRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	ts, err := decodeTimestamp(rec.Timestamp)
	if err != nil {
		return err
	}

	*t = Turn{
		Timestamp:         ts,
		UserMessage:       rec.UserMessage,
		AssistantResponse: rec.AssistantResponse,
		SessionID:         rec.SessionID,
	}
	return nil
}

func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	if raw[0] != '"' {
		secs, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %s: %w", raw, err)
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// EncodeTurn serializes a turn for storage.
func EncodeTurn(t Turn) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeTurn parses a stored record. Any failure wraps ErrMalformedTurn.
func DecodeTurn(raw string) (Turn, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Turn{}, fmt.Errorf("%w: not a JSON object", ErrMalformedTurn)
	}

	var t Turn
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return Turn{}, fmt.Errorf("%w: %v", ErrMalformedTurn, err)
	}
	return t, nil
}
