package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/mindneox/recall/pkg/llm"
)

// MockGenerator is a test generator that records prompts and returns a
// canned reply.
type MockGenerator struct {
	mu sync.Mutex

	// Reply is returned by Generate. Defaults to "ok".
	Reply string

	// Fail causes Generate and Ping to return an error.
	Fail bool

	// Prompts accumulates every prompt passed to Generate.
	Prompts []string
}

func NewMockGenerator(reply string) *MockGenerator {
	return &MockGenerator{Reply: reply}
}

func (m *MockGenerator) Name() string {
	return "mock"
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Fail {
		return nil, errors.Join(llm.ErrGeneration, errors.New("mock generation failure"))
	}

	reply := m.Reply
	if reply == "" {
		reply = "ok"
	}
	return &llm.Response{Text: reply, Model: "test-model"}, nil
}

func (m *MockGenerator) Ping(_ context.Context) error {
	if m.Fail {
		return errors.New("mock generator unavailable")
	}
	return nil
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
