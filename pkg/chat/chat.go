// Package chat answers one user message with the help of the user's
// remembered history, then records the exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/llm"
	"github.com/mindneox/recall/pkg/memory"
	"github.com/mindneox/recall/pkg/metrics"
	"github.com/mindneox/recall/pkg/worker"
)

var (
	// ErrEmptyMessage is returned for a blank message.
	ErrEmptyMessage = errors.New("message is required")

	// ErrModelUnavailable is returned when the model could not produce a reply.
	ErrModelUnavailable = errors.New("model unavailable")
)

// anonymousPrefix builds the user id for callers that do not identify
// themselves; their memory is scoped to the session.
const anonymousPrefix = "anonymous_"

// Request is an incoming chat message.
type Request struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	ClerkUserID string `json:"clerk_user_id,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	UserName    string `json:"user_name,omitempty"`
}

// Response is the reply plus the identifiers the caller should reuse.
type Response struct {
	Response     string        `json:"response"`
	SessionID    string        `json:"session_id"`
	UserID       string        `json:"user_id"`
	Timestamp    time.Time     `json:"timestamp"`
	HasContext   bool          `json:"has_context"`
	MemoryStatus memory.Status `json:"memory_status"`
	ArchiveID    string        `json:"archive_id,omitempty"`
}

// Config wires a Handler.
type Config struct {
	Memory    *memory.Service
	Generator llm.Generator

	// Pool runs archive and event side effects. Optional.
	Pool *worker.Pool

	// ContextTurns is how many past turns are put in front of the message.
	// Defaults to the memory service's configured ContextTurns.
	ContextTurns int

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Handler runs the chat flow.
type Handler struct {
	memory       *memory.Service
	generator    llm.Generator
	pool         *worker.Pool
	contextTurns int
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// NewHandler creates a chat handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	turns := cfg.ContextTurns
	if turns <= 0 {
		turns = cfg.Memory.Limits().ContextTurns
	}

	return &Handler{
		memory:       cfg.Memory,
		generator:    cfg.Generator,
		pool:         cfg.Pool,
		contextTurns: turns,
		logger:       logger,
		metrics:      cfg.Metrics,
	}
}

// ResolveIdentity fills in the session and user ids the way the chat flow
// does: a missing session gets a new UUID, and the user id prefers the
// external auth id, then the supplied id, then an anonymous per-session id.
func ResolveIdentity(req Request) (sessionID, userID string) {
	sessionID = strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	switch {
	case strings.TrimSpace(req.ClerkUserID) != "":
		userID = req.ClerkUserID
	case strings.TrimSpace(req.UserID) != "":
		userID = req.UserID
	default:
		userID = anonymousPrefix + sessionID
	}
	return sessionID, userID
}

// Handle answers one message. Memory problems never fail the request; only
// an empty message or a model failure does.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		h.metrics.ObserveChat("rejected", false)
		return nil, ErrEmptyMessage
	}

	sessionID, userID := ResolveIdentity(req)

	history := h.memory.Context(ctx, userID, h.contextTurns)
	block := history.Value
	hasContext := block != ""

	h.logger.Debug("chat context",
		"user_id", userID,
		"session_id", sessionID,
		"has_context", hasContext,
		"memory_status", history.Status,
	)

	prompt := llm.BuildPrompt(block, req.Message)

	start := time.Now()
	reply, err := h.generator.Generate(ctx, prompt)
	h.metrics.ObserveGeneration(time.Since(start))
	if err != nil {
		h.metrics.ObserveChat("error", hasContext)
		h.logger.Error("generation failed",
			"user_id", userID,
			"provider", h.generator.Name(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	recorded := h.memory.Record(ctx, userID, sessionID, req.Message, reply.Text)

	resp := &Response{
		Response:     reply.Text,
		SessionID:    sessionID,
		UserID:       userID,
		Timestamp:    recorded.Value.Timestamp,
		HasContext:   hasContext,
		MemoryStatus: recorded.Status,
	}
	if resp.Timestamp.IsZero() {
		resp.Timestamp = time.Now().UTC()
	}

	if h.pool != nil {
		rec := archive.NewRecord(userID, sessionID, req.Message, reply.Text, hasContext)
		rec.Model = reply.Model
		rec.UserEmail = req.UserEmail
		rec.UserName = req.UserName
		rec.Timestamp = resp.Timestamp

		keywords := memory.Tokenize(req.Message, h.memory.Limits().TokenMinLength)
		if h.pool.Enqueue(worker.Job{Record: rec, Keywords: keywords}) {
			resp.ArchiveID = rec.ID
		}
	}

	h.metrics.ObserveChat("ok", hasContext)
	return resp, nil
}
