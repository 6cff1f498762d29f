// Package api provides the HTTP surface of recall: the memory endpoints, the
// chat endpoint, archive listing, health, metrics and MCP.
package api

import (
	"net/http"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/chat"
	"github.com/mindneox/recall/pkg/llm"
	"github.com/mindneox/recall/pkg/memory"
	"github.com/mindneox/recall/pkg/metrics"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string
}

// Dependencies are the components the server exposes. Only Memory is
// required; a missing optional component makes its routes answer 503.
type Dependencies struct {
	Memory *memory.Service

	Chat      *chat.Handler
	Generator llm.Generator
	Archive   archive.Driver

	// EventsProvider names the configured event stream for /health.
	EventsProvider string

	Metrics *metrics.Metrics

	// MCP is mounted at /mcp when set.
	MCP http.Handler
}
