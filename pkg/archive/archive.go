// Package archive is the durable, append-only record of every chat turn.
// Unlike the memory store it never trims or expires anything.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured is returned when no archive provider was selected.
	ErrNotConfigured = errors.New("archive not configured")

	// ErrNotFound is returned by Get and Delete for an unknown record id.
	ErrNotFound = errors.New("conversation not found")
)

// Record is one archived exchange.
type Record struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	SessionID         string    `json:"session_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Model             string    `json:"model,omitempty"`
	HasContext        bool      `json:"has_context"`
	UserEmail         string    `json:"user_email,omitempty"`
	UserName          string    `json:"user_name,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewRecord stamps a fresh record with an id and UTC timestamp.
func NewRecord(userID, sessionID, userMessage, assistantResponse string, hasContext bool) Record {
	return Record{
		ID:                uuid.NewString(),
		UserID:            userID,
		SessionID:         sessionID,
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
		HasContext:        hasContext,
		Timestamp:         time.Now().UTC(),
	}
}

// Stats summarizes the whole archive. Every record holds two messages,
// the user's and the assistant's.
type Stats struct {
	TotalConversations int64 `json:"total_conversations"`
	TotalMessages      int64 `json:"total_messages"`
	UniqueUsers        int64 `json:"unique_users"`
	WithContext        int64 `json:"with_context"`
}

// NewStats fills the derived message count.
func NewStats(conversations, users, withContext int64) Stats {
	return Stats{
		TotalConversations: conversations,
		TotalMessages:      conversations * 2,
		UniqueUsers:        users,
		WithContext:        withContext,
	}
}

// Driver persists archive records.
type Driver interface {
	// Save appends a record. Saving the same ID twice is a no-op.
	Save(ctx context.Context, rec Record) error

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)

	// ListByUser returns up to limit of one user's records, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)

	// Get returns one record, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes one record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of archived records.
	Count(ctx context.Context) (int64, error)

	// Stats aggregates over every archived record.
	Stats(ctx context.Context) (Stats, error)

	// Ping checks the backing database.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
