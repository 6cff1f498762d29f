package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mindneox/recall/pkg/memory"
)

var (
	historyToolName    = "memory_history"
	historyDescription = "Return a user's most recent conversation turns from recall, newest first. Each turn has the user message, the assistant response, the session id and a timestamp."

	predictToolName    = "memory_predict"
	predictDescription = "Return the greeting recall would show a returning user, along with the top keywords it was built from."

	interestsToolName    = "memory_interests"
	interestsDescription = "Return a user's interest keywords ranked by how often they appeared in the user's messages."
)

// HistoryInput represents the input arguments for the memory_history tool.
type HistoryInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose history to read"`
	Limit  int64  `json:"limit,omitempty" jsonschema:"maximum number of turns to return (default 20)"`
}

// HistoryTurn is a turn with its timestamp rendered as RFC 3339 text.
type HistoryTurn struct {
	Timestamp         string `json:"timestamp"`
	UserMessage       string `json:"user_message"`
	AssistantResponse string `json:"assistant_response"`
	SessionID         string `json:"session_id"`
}

// HistoryOutput is the structured output of memory_history.
type HistoryOutput struct {
	Status memory.Status `json:"status"`
	Turns  []HistoryTurn `json:"turns"`
}

// PredictInput represents the input arguments for the memory_predict tool.
type PredictInput struct {
	UserID string `json:"user_id" jsonschema:"the user to greet"`
}

// PredictOutput is the structured output of memory_predict.
type PredictOutput struct {
	Status      memory.Status    `json:"status"`
	Greeting    string           `json:"greeting"`
	TopKeywords []memory.Keyword `json:"top_keywords"`
}

// InterestsInput represents the input arguments for the memory_interests tool.
type InterestsInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose interests to read"`
	Limit  int64  `json:"limit,omitempty" jsonschema:"maximum number of keywords to return (default 10)"`
}

// InterestsOutput is the structured output of memory_interests.
type InterestsOutput struct {
	Status   memory.Status    `json:"status"`
	Keywords []memory.Keyword `json:"keywords"`
}

func (s *Server) handleHistory(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.config.Memory.Limits().HistoryLimit
	}

	res := s.config.Memory.History(ctx, input.UserID, limit)
	if res.Rejected() {
		return errorResult(res.Err), HistoryOutput{Status: res.Status, Turns: []HistoryTurn{}}, nil
	}

	out := HistoryOutput{Status: res.Status, Turns: make([]HistoryTurn, 0, len(res.Value))}
	for _, t := range res.Value {
		ts := ""
		if !t.Timestamp.IsZero() {
			ts = t.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		out.Turns = append(out.Turns, HistoryTurn{
			Timestamp:         ts,
			UserMessage:       t.UserMessage,
			AssistantResponse: t.AssistantResponse,
			SessionID:         t.SessionID,
		})
	}
	return s.textResult(out), out, nil
}

func (s *Server) handlePredict(ctx context.Context, _ *mcp.CallToolRequest, input PredictInput) (*mcp.CallToolResult, PredictOutput, error) {
	res := s.config.Memory.Predict(ctx, input.UserID)
	if res.Rejected() {
		return errorResult(res.Err), PredictOutput{Status: res.Status, TopKeywords: []memory.Keyword{}}, nil
	}

	out := PredictOutput{Status: res.Status, Greeting: res.Value.Greeting, TopKeywords: keywordsOrEmpty(res.Value.Keywords)}
	return s.textResult(out), out, nil
}

func (s *Server) handleInterests(ctx context.Context, _ *mcp.CallToolRequest, input InterestsInput) (*mcp.CallToolResult, InterestsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.config.Memory.Limits().ProfileKeywords
	}

	res := s.config.Memory.Interests(ctx, input.UserID, limit)
	if res.Rejected() {
		return errorResult(res.Err), InterestsOutput{Status: res.Status, Keywords: []memory.Keyword{}}, nil
	}

	out := InterestsOutput{Status: res.Status, Keywords: keywordsOrEmpty(res.Value)}
	return s.textResult(out), out, nil
}

// keywordsOrEmpty keeps array-typed output fields from encoding as null,
// which the inferred output schema rejects.
func keywordsOrEmpty(k []memory.Keyword) []memory.Keyword {
	if k == nil {
		return []memory.Keyword{}
	}
	return k
}

// textResult mirrors the structured output as JSON text for clients that
// only read content.
func (s *Server) textResult(v any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		s.config.Logger.Error("serializing tool result", "error", err)
		return errorResult(fmt.Errorf("failed to serialize results: %w", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
