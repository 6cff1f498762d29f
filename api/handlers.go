package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/chat"
	"github.com/mindneox/recall/pkg/memory"
)

const (
	defaultHistoryLimit          = 20
	defaultConversationLimit     = 10
	defaultUserConversationLimit = 50
)

// ErrorResponse is the body of every non-memory error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryResponse lists a user's remembered turns, newest first.
type HistoryResponse struct {
	Status    memory.Status `json:"status"`
	UserID    string        `json:"user_id"`
	Count     int           `json:"count"`
	History   []memory.Turn `json:"history"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}

// SessionResponse lists a session's turns, newest first.
type SessionResponse struct {
	Status    memory.Status `json:"status"`
	SessionID string        `json:"session_id"`
	Count     int           `json:"count"`
	Messages  []memory.Turn `json:"messages"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}

// PredictResponse carries the greeting for a returning user.
type PredictResponse struct {
	Status      memory.Status    `json:"status"`
	UserID      string           `json:"user_id"`
	Greeting    string           `json:"greeting"`
	TopKeywords []memory.Keyword `json:"top_keywords"`
	Timestamp   time.Time        `json:"timestamp"`
	Error       string           `json:"error,omitempty"`
}

// ProfileResponse summarizes what is remembered about a user.
type ProfileResponse struct {
	Status             memory.Status    `json:"status"`
	UserID             string           `json:"user_id"`
	TotalConversations int              `json:"total_conversations"`
	TopKeywords        []memory.Keyword `json:"top_keywords"`
	Timestamp          time.Time        `json:"timestamp"`
	Error              string           `json:"error,omitempty"`
}

// ForgetResponse confirms deletion of a user's memory.
type ForgetResponse struct {
	Status    memory.Status `json:"status"`
	Message   string        `json:"message"`
	UserID    string        `json:"user_id"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}

// ConversationsResponse lists archived turns, newest first.
type ConversationsResponse struct {
	Count         int              `json:"count"`
	Total         int64            `json:"total"`
	Conversations []archive.Record `json:"conversations"`
}

// UserConversationsResponse lists one user's archived turns, newest first.
type UserConversationsResponse struct {
	UserID        string           `json:"user_id"`
	Count         int              `json:"count"`
	Conversations []archive.Record `json:"conversations"`
}

// DeleteConversationResponse confirms removal of an archived turn.
type DeleteConversationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// StatsResponse is the archive summary plus which optional backends are on.
// The counts are zero when the archive is disabled.
type StatsResponse struct {
	archive.Stats
	ArchiveEnabled bool      `json:"archive_enabled"`
	LLMEnabled     bool      `json:"llm_enabled"`
	EventsEnabled  bool      `json:"events_enabled"`
	Timestamp      time.Time `json:"timestamp"`
}

// HealthResponse reports the state of every backing service.
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx := c.Context()

	resp := HealthResponse{
		Status:    "healthy",
		Services:  map[string]string{},
		Timestamp: now(),
	}

	if err := s.deps.Memory.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Services["memory"] = err.Error()
	} else {
		resp.Services["memory"] = "ok"
	}

	switch {
	case s.deps.Generator == nil:
		resp.Services["llm"] = "disabled"
	case s.deps.Generator.Ping(ctx) != nil:
		resp.Services["llm"] = "unreachable"
	default:
		resp.Services["llm"] = "ok"
	}

	switch {
	case s.deps.Archive == nil:
		resp.Services["archive"] = "disabled"
	case s.deps.Archive.Ping(ctx) != nil:
		resp.Services["archive"] = "unreachable"
	default:
		resp.Services["archive"] = "ok"
	}

	resp.Services["events"] = "disabled"
	if s.deps.EventsProvider != "" {
		resp.Services["events"] = s.deps.EventsProvider
	}

	return c.JSON(resp)
}

func (s *Server) handleUserHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	limit := c.QueryInt("limit", defaultHistoryLimit)

	res := s.deps.Memory.History(c.Context(), userID, int64(limit))
	return c.Status(statusCode(res.Status)).JSON(HistoryResponse{
		Status:    res.Status,
		UserID:    userID,
		Count:     len(res.Value),
		History:   res.Value,
		Timestamp: now(),
		Error:     errString(res.Err),
	})
}

func (s *Server) handleSessionMessages(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	res := s.deps.Memory.SessionHistory(c.Context(), sessionID)
	return c.Status(statusCode(res.Status)).JSON(SessionResponse{
		Status:    res.Status,
		SessionID: sessionID,
		Count:     len(res.Value),
		Messages:  res.Value,
		Timestamp: now(),
		Error:     errString(res.Err),
	})
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	res := s.deps.Memory.Predict(c.Context(), userID)
	return c.Status(statusCode(res.Status)).JSON(PredictResponse{
		Status:      res.Status,
		UserID:      userID,
		Greeting:    res.Value.Greeting,
		TopKeywords: res.Value.Keywords,
		Timestamp:   now(),
		Error:       errString(res.Err),
	})
}

func (s *Server) handleProfile(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	res := s.deps.Memory.Profile(c.Context(), userID)
	return c.Status(statusCode(res.Status)).JSON(ProfileResponse{
		Status:             res.Status,
		UserID:             userID,
		TotalConversations: res.Value.TotalConversations,
		TopKeywords:        res.Value.Keywords,
		Timestamp:          now(),
		Error:              errString(res.Err),
	})
}

func (s *Server) handleForget(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	res := s.deps.Memory.Forget(c.Context(), userID)

	msg := "user memory deleted"
	if !res.OK() {
		msg = "user memory not deleted"
	}

	return c.Status(statusCode(res.Status)).JSON(ForgetResponse{
		Status:    res.Status,
		Message:   msg,
		UserID:    userID,
		Timestamp: now(),
		Error:     errString(res.Err),
	})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	if s.deps.Chat == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "chat is not configured"})
	}

	var req chat.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	resp, err := s.deps.Chat.Handle(c.Context(), req)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, chat.ErrModelUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
	case err != nil:
		s.logger.Error("chat failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "chat failed"})
	}

	return c.JSON(resp)
}

func (s *Server) handleConversations(c *fiber.Ctx) error {
	if s.deps.Archive == nil {
		return archiveDisabled(c)
	}

	ctx := c.Context()
	limit := c.QueryInt("limit", defaultConversationLimit)

	records, err := s.deps.Archive.List(ctx, limit)
	if err != nil {
		s.logger.Error("listing conversations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list conversations"})
	}

	total, err := s.deps.Archive.Count(ctx)
	if err != nil {
		s.logger.Error("counting conversations", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count conversations"})
	}

	return c.JSON(ConversationsResponse{
		Count:         len(records),
		Total:         total,
		Conversations: records,
	})
}

func (s *Server) handleUserConversations(c *fiber.Ctx) error {
	if s.deps.Archive == nil {
		return archiveDisabled(c)
	}

	userID := c.Params("user_id")
	limit := c.QueryInt("limit", defaultUserConversationLimit)

	records, err := s.deps.Archive.ListByUser(c.Context(), userID, limit)
	if err != nil {
		s.logger.Error("listing user conversations", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list conversations"})
	}

	return c.JSON(UserConversationsResponse{
		UserID:        userID,
		Count:         len(records),
		Conversations: records,
	})
}

func (s *Server) handleConversation(c *fiber.Ctx) error {
	if s.deps.Archive == nil {
		return archiveDisabled(c)
	}

	id := c.Params("id")
	rec, err := s.deps.Archive.Get(c.Context(), id)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case err != nil:
		s.logger.Error("getting conversation", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get conversation"})
	}

	return c.JSON(rec)
}

func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	if s.deps.Archive == nil {
		return archiveDisabled(c)
	}

	id := c.Params("id")
	err := s.deps.Archive.Delete(c.Context(), id)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case err != nil:
		s.logger.Error("deleting conversation", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to delete conversation"})
	}

	return c.JSON(DeleteConversationResponse{Message: "conversation deleted", ID: id})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	resp := StatsResponse{
		ArchiveEnabled: s.deps.Archive != nil,
		LLMEnabled:     s.deps.Generator != nil,
		EventsEnabled:  s.deps.EventsProvider != "",
		Timestamp:      now(),
	}

	if s.deps.Archive != nil {
		stats, err := s.deps.Archive.Stats(c.Context())
		if err != nil {
			s.logger.Error("aggregating conversations", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to compute stats"})
		}
		resp.Stats = stats
	}

	return c.JSON(resp)
}

func archiveDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: archive.ErrNotConfigured.Error()})
}

// statusCode maps a memory outcome to an HTTP status. Degraded answers are
// still answers.
func statusCode(status memory.Status) int {
	if status == memory.StatusRejected {
		return fiber.StatusBadRequest
	}
	return fiber.StatusOK
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func now() time.Time {
	return time.Now().UTC()
}
