// Package llm defines the boundary to the language model that writes chat
// replies. recall treats the model as an opaque collaborator: it hands over
// one prompt string and gets one reply back.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrGeneration wraps any failure to obtain a reply from the model.
var ErrGeneration = errors.New("generation failed")

// Generator produces a reply for a fully built prompt.
type Generator interface {
	// Name returns the provider name (e.g. "ollama").
	Name() string

	// Generate runs the prompt to completion.
	Generate(ctx context.Context, prompt string) (*Response, error)

	// Ping reports whether the model server is reachable.
	Ping(ctx context.Context) error
}

// Response is a completed generation.
type Response struct {
	// Text is the reply with surrounding whitespace removed.
	Text string `json:"text"`

	// Model that generated the reply.
	Model string `json:"model"`

	// Usage is reported when the provider returns it.
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts and timing information.
type Usage struct {
	PromptTokens     int           `json:"prompt_tokens,omitempty"`
	CompletionTokens int           `json:"completion_tokens,omitempty"`
	TotalDuration    time.Duration `json:"total_duration,omitempty"`
}

// BuildPrompt wraps the current message in the instruction template. A
// non-empty history block is framed ahead of the message so the model can
// tell earlier turns from the current one.
func BuildPrompt(history, message string) string {
	var b strings.Builder
	b.WriteString("[INST] ")
	if history != "" {
		b.WriteString("\nPrevious conversation context:\n")
		b.WriteString(history)
		b.WriteString("\nCurrent conversation:\n")
	}
	b.WriteString(message)
	b.WriteString(" [/INST]")
	return b.String()
}
