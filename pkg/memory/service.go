// Package memory keeps per-user and per-session conversational state in a
// key-value store and derives interests, greetings and prompt context from it.
//
// Memory is an enhancement of the chat flow, never a requirement: every
// [Service] operation returns a [Result] whose degraded branch carries an
// empty or partial payload when the store is unreachable. Only blank user or
// session ids are rejected, and they are rejected before any store call.
//
// Keys follow a fixed layout shared with other producers:
//
//	user:{id}:history       list, newest first, capped, 30 day TTL
//	session:{id}:messages   list, newest first, 1 hour TTL
//	user:{id}:context       sorted set of token counts, 30 day TTL
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mindneox/recall/pkg/kvstore"
	"github.com/mindneox/recall/pkg/logger"
	"github.com/mindneox/recall/pkg/metrics"
)

// Config wires a Service.
type Config struct {
	// Store is the only persistence substrate.
	Store kvstore.Store

	// Limits overrides the default bounds. Zero fields use defaults.
	Limits Limits

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Prediction is a greeting and the keywords it was built from.
type Prediction struct {
	Greeting string    `json:"greeting"`
	Keywords []Keyword `json:"top_keywords"`
}

// Profile summarizes what is remembered about a user.
type Profile struct {
	TotalConversations int       `json:"total_conversations"`
	Keywords           []Keyword `json:"top_keywords"`
}

// Service is the memory API used by the chat handler, HTTP API, MCP tools
// and CLI.
type Service struct {
	store     kvstore.Store
	limits    Limits
	ledger    *Ledger
	interests *InterestModel
	predictor *Predictor
	assembler *ContextAssembler
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	limits := cfg.Limits.withDefaults()

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	ledger := NewLedger(cfg.Store, limits)
	interests := NewInterestModel(cfg.Store, limits)

	return &Service{
		store:     cfg.Store,
		limits:    limits,
		ledger:    ledger,
		interests: interests,
		predictor: NewPredictor(interests, limits),
		assembler: NewContextAssembler(ledger, limits),
		logger:    log,
		metrics:   cfg.Metrics,
	}
}

// Limits returns the effective limits.
func (s *Service) Limits() Limits {
	return s.limits
}

// Record appends a turn to the user and session histories and counts the
// user message tokens as interests. The history and interest writes are
// independent; a failure of one does not prevent the other.
func (s *Service) Record(ctx context.Context, userID, sessionID, userText, assistantText string) Result[Turn] {
	if err := errors.Join(validUserID(userID), validSessionID(sessionID)); err != nil {
		return finish(s, "record", Turn{}, err, "user_id", userID, "session_id", sessionID)
	}

	turn, histErr := s.ledger.AppendTurn(ctx, userID, sessionID, userText, assistantText)
	tokens, tokErr := s.interests.RecordTokens(ctx, userID, userText)
	if tokErr != nil {
		tokErr = fmt.Errorf("record tokens: %w", tokErr)
	}

	s.logger.Debug("turn recorded",
		"user_id", userID,
		"session_id", sessionID,
		"tokens", len(tokens),
	)

	return finish(s, "record", turn, errors.Join(histErr, tokErr), "user_id", userID, "session_id", sessionID)
}

// History returns up to limit of the user's turns, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int64) Result[[]Turn] {
	turns, err := s.ledger.GetUserHistory(ctx, userID, limit)
	return finish(s, "history", nonNil(turns), err, "user_id", userID)
}

// SessionHistory returns every turn of the session, newest first.
func (s *Service) SessionHistory(ctx context.Context, sessionID string) Result[[]Turn] {
	turns, err := s.ledger.GetSessionHistory(ctx, sessionID)
	return finish(s, "session_history", nonNil(turns), err, "session_id", sessionID)
}

// Interests returns up to limit of the user's keywords by descending
// frequency.
func (s *Service) Interests(ctx context.Context, userID string, limit int64) Result[[]Keyword] {
	keywords, err := s.interests.TopKeywords(ctx, userID, limit)
	return finish(s, "interests", nonNil(keywords), err, "user_id", userID)
}

// Predict returns a greeting for the user. The greeting is usable in every
// outcome, including rejected.
func (s *Service) Predict(ctx context.Context, userID string) Result[Prediction] {
	greeting, keywords, err := s.predictor.Greeting(ctx, userID)
	return finish(s, "predict", Prediction{Greeting: greeting, Keywords: nonNil(keywords)}, err, "user_id", userID)
}

// Context renders the user's most recent turnsBack turns for a prompt.
// A non-positive turnsBack uses the configured default.
func (s *Service) Context(ctx context.Context, userID string, turnsBack int) Result[string] {
	block, err := s.assembler.BuildContextBlock(ctx, userID, turnsBack)
	return finish(s, "context", block, err, "user_id", userID)
}

// Profile reports how many turns are remembered for the user and their top
// keywords.
func (s *Service) Profile(ctx context.Context, userID string) Result[Profile] {
	if err := validUserID(userID); err != nil {
		return finish(s, "profile", Profile{Keywords: []Keyword{}}, err, "user_id", userID)
	}

	turns, histErr := s.ledger.GetUserHistory(ctx, userID, s.limits.ProfileHistory)
	keywords, kwErr := s.interests.TopKeywords(ctx, userID, s.limits.ProfileKeywords)

	profile := Profile{
		TotalConversations: len(turns),
		Keywords:           nonNil(keywords),
	}
	return finish(s, "profile", profile, errors.Join(histErr, kwErr), "user_id", userID)
}

// Forget deletes the user's history and interests. Forgetting an unknown
// user succeeds.
func (s *Service) Forget(ctx context.Context, userID string) Result[struct{}] {
	if err := validUserID(userID); err != nil {
		return finish(s, "forget", struct{}{}, err, "user_id", userID)
	}

	err := errors.Join(
		s.ledger.DeleteUserHistory(ctx, userID),
		s.interests.DeleteContext(ctx, userID),
	)
	if err == nil {
		s.logger.Info("user memory deleted", "user_id", userID)
	}
	return finish(s, "forget", struct{}{}, err, "user_id", userID)
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := s.limits.bound(ctx)
	defer cancel()

	return s.store.Ping(ctx)
}

func finish[T any](s *Service, op string, value T, err error, attrs ...any) Result[T] {
	status := classify(err)

	var malformed *MalformedError
	if errors.As(err, &malformed) {
		s.metrics.ObserveMalformedTurns(malformed.Skipped)
	}

	switch status {
	case StatusDegraded:
		s.logger.Warn("memory degraded", append(attrs, "operation", op, "error", err)...)
	case StatusRejected:
		s.logger.Debug("memory request rejected", append(attrs, "operation", op, "error", err)...)
	}

	s.metrics.ObserveMemoryOp(op, string(status))

	return Result[T]{Status: status, Value: value, Err: err}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
