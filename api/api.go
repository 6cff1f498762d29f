package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// Server is the API server for recall.
type Server struct {
	config Config
	deps   Dependencies
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
func NewServer(config Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if deps.Memory == nil {
		return nil, errors.New("memory service is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		deps:   deps,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/health", s.handleHealth)

	v1 := app.Group("/v1")
	v1.Get("/users/:user_id/history", s.handleUserHistory)
	v1.Delete("/users/:user_id/history", s.handleForget)
	v1.Get("/users/:user_id/predict", s.handlePredict)
	v1.Get("/users/:user_id/context", s.handleProfile)
	v1.Get("/users/:user_id/conversations", s.handleUserConversations)
	v1.Get("/sessions/:session_id/messages", s.handleSessionMessages)
	v1.Post("/chat", s.handleChat)
	v1.Get("/conversations", s.handleConversations)
	v1.Get("/conversations/:id", s.handleConversation)
	v1.Delete("/conversations/:id", s.handleDeleteConversation)
	v1.Get("/stats", s.handleStats)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	if deps.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(deps.MCP))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
