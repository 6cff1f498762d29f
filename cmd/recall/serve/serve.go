// Package servecmder provides the serve command that runs the recall API.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/api"
	mcpapi "github.com/mindneox/recall/api/mcp"
	"github.com/mindneox/recall/pkg/chat"
	"github.com/mindneox/recall/pkg/config"
	"github.com/mindneox/recall/pkg/eventstream"
	"github.com/mindneox/recall/pkg/logger"
	"github.com/mindneox/recall/pkg/metrics"
	"github.com/mindneox/recall/pkg/services"
	"github.com/mindneox/recall/pkg/worker"
)

type ServeCommander struct {
	redisAddr      string
	memoryProvider string
	listen         string
	llmTarget      string
	llmModel       string
	archive        string
	sqlitePath     string
	postgresDSN    string
	events         string
	kafkaBrokers   string
	historyLimit   int

	jsonLogs bool
	logFile  string
	debug    bool

	cfg    *config.Config
	logger *slog.Logger
}

var serveFlags = []string{
	config.FlagRedisAddr,
	config.FlagMemoryProvider,
	config.FlagListen,
	config.FlagLLMTarget,
	config.FlagLLMModel,
	config.FlagArchive,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEvents,
	config.FlagKafkaBrokers,
	config.FlagHistoryLimit,
}

const serveLongDesc string = `Run the recall API server.

The server exposes the memory endpoints, the chat endpoint, archived
conversations, Prometheus metrics at /metrics and an MCP endpoint at /mcp.

Flags override RECALL_* environment variables, which override config.toml.

Examples:
  recall serve
  recall serve --redis-addr redis:6379 --listen :8000
  recall serve --archive sqlite --sqlite ./recall.db
  recall serve --events kafka --kafka-brokers kafka:9092`

const serveShortDesc string = "Run the recall API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(cmd, configDir, serveFlags...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagRedisAddr, &cmder.redisAddr)
	config.AddStringFlag(cmd, config.Flags, config.FlagMemoryProvider, &cmder.memoryProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTarget, &cmder.llmTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagArchive, &cmder.archive)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEvents, &cmder.events)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddIntFlag(cmd, config.Flags, config.FlagHistoryLimit, &cmder.historyLimit)
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write logs as JSON instead of colorized text")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

// setupLogger builds the console logger and, with --log-file, tees every
// record as JSON into that file. The returned func closes the file.
func (c *ServeCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(!c.jsonLogs),
		logger.WithJSON(c.jsonLogs),
		logger.WithPrefix("recall"),
	)
	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(console, logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(c.debug),
		logger.WithPrefix("recall"),
	))
	return func() { _ = f.Close() }, nil
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := c.cfg
	m := metrics.New()

	store, err := services.NewStore(cfg, c.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	memorySvc, err := services.NewMemory(cfg, store, c.logger, m)
	if err != nil {
		return err
	}

	if err := memorySvc.Ping(ctx); err != nil {
		c.logger.Warn("memory store unreachable, memory endpoints will answer degraded", "error", err)
	}

	generator, err := services.NewGenerator(cfg)
	if err != nil {
		return err
	}

	archiver, err := services.NewArchive(ctx, cfg, c.logger)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	if archiver != nil {
		defer archiver.Close()
	}

	publisher, err := services.NewPublisher(cfg, c.logger)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	// Closed before the publisher and archive so queued jobs drain first.
	pool, err := worker.NewPool(&worker.Config{
		Archive:   archiver,
		Publisher: publisher,
		Source:    eventstream.EventSource{Service: "recall", Model: cfg.LLM.Model},
		Logger:    c.logger,
		Metrics:   m,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	chatHandler := chat.NewHandler(chat.Config{
		Memory:    memorySvc,
		Generator: generator,
		Pool:      pool,
		Logger:    c.logger,
		Metrics:   m,
	})

	mcpServer, err := mcpapi.NewServer(mcpapi.Config{
		Memory: memorySvc,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(
		api.Config{ListenAddr: cfg.API.Listen},
		api.Dependencies{
			Memory:         memorySvc,
			Chat:           chatHandler,
			Generator:      generator,
			Archive:        archiver,
			EventsProvider: cfg.Events.Provider,
			Metrics:        m,
			MCP:            mcpServer.Handler(),
		},
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("recall ready",
		"listen", cfg.API.Listen,
		"memory", cfg.Memory.Provider,
		"llm", cfg.LLM.Target,
		"model", cfg.LLM.Model,
		"archive", cfg.Archive.Provider,
		"events", cfg.Events.Provider,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	done := make(chan error, 1)
	go func() { done <- apiServer.Shutdown() }()

	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("API server did not shut down in time")
	}
}
