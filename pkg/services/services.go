// Package services builds recall's components from a resolved *config.Config.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/archive/postgres"
	"github.com/mindneox/recall/pkg/archive/sqlite"
	"github.com/mindneox/recall/pkg/config"
	"github.com/mindneox/recall/pkg/eventstream"
	"github.com/mindneox/recall/pkg/eventstream/kafka"
	"github.com/mindneox/recall/pkg/eventstream/nop"
	"github.com/mindneox/recall/pkg/kvstore"
	"github.com/mindneox/recall/pkg/kvstore/inmemory"
	"github.com/mindneox/recall/pkg/kvstore/redis"
	"github.com/mindneox/recall/pkg/llm"
	"github.com/mindneox/recall/pkg/llm/ollama"
	"github.com/mindneox/recall/pkg/memory"
	"github.com/mindneox/recall/pkg/metrics"
)

// Provider names accepted in configuration.
const (
	ProviderRedis    = "redis"
	ProviderInMemory = "inmemory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderKafka    = "kafka"
	ProviderOllama   = "ollama"
)

// NewStore opens the key-value store named by memory.provider.
func NewStore(cfg *config.Config, logger *slog.Logger) (kvstore.Store, error) {
	switch strings.ToLower(cfg.Memory.Provider) {
	case "", ProviderRedis:
		timeout, err := cfg.Redis.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		logger.Info("using redis memory store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return redis.NewDriver(redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  timeout,
		}), nil
	case ProviderInMemory:
		logger.Warn("using in-memory memory store, nothing survives a restart")
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown memory provider: %q", cfg.Memory.Provider)
	}
}

// Limits applies the configured memory bounds over the defaults.
func Limits(cfg *config.Config) (memory.Limits, error) {
	limits := memory.DefaultLimits()

	if cfg.Memory.HistoryLimit > 0 {
		limits.HistoryLimit = int64(cfg.Memory.HistoryLimit)
	}
	if cfg.Memory.TokenMinLength > 0 {
		limits.TokenMinLength = cfg.Memory.TokenMinLength
	}

	historyTTL, err := cfg.Memory.HistoryTTLDuration()
	if err != nil {
		return limits, err
	}
	if historyTTL > 0 {
		limits.HistoryTTL = historyTTL
	}

	sessionTTL, err := cfg.Memory.SessionTTLDuration()
	if err != nil {
		return limits, err
	}
	if sessionTTL > 0 {
		limits.SessionTTL = sessionTTL
	}

	if timeout, err := cfg.Redis.TimeoutDuration(); err == nil && timeout > 0 {
		limits.OpTimeout = timeout
	}

	return limits, nil
}

// NewMemory builds the memory service over store.
func NewMemory(cfg *config.Config, store kvstore.Store, logger *slog.Logger, m *metrics.Metrics) (*memory.Service, error) {
	limits, err := Limits(cfg)
	if err != nil {
		return nil, err
	}

	return memory.NewService(memory.Config{
		Store:   store,
		Limits:  limits,
		Logger:  logger,
		Metrics: m,
	}), nil
}

// NewArchive opens the archive named by archive.provider. It returns nil
// and no error when archiving is disabled.
func NewArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (archive.Driver, error) {
	switch strings.ToLower(cfg.Archive.Provider) {
	case "":
		return nil, nil
	case ProviderSQLite:
		path := cfg.Archive.SQLitePath
		if path == "" {
			path = ":memory:"
		}
		logger.Info("using sqlite archive", "path", path)
		return sqlite.NewDriver(path)
	case ProviderPostgres:
		if cfg.Archive.PostgresDSN == "" {
			return nil, fmt.Errorf("archive.postgres_dsn is required for the postgres archive")
		}
		logger.Info("using postgres archive")
		return postgres.NewDriver(ctx, cfg.Archive.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown archive provider: %q", cfg.Archive.Provider)
	}
}

// NewPublisher builds the turn event publisher named by events.provider.
// A disabled provider yields the no-op publisher.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (eventstream.Publisher, error) {
	switch strings.ToLower(cfg.Events.Provider) {
	case "":
		return nop.NewPublisher(logger), nil
	case ProviderKafka:
		logger.Info("publishing turn events to kafka",
			"brokers", cfg.Events.KafkaBrokers,
			"topic", cfg.Events.KafkaTopic,
		)
		return kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Events.Brokers(),
			Topic:   cfg.Events.KafkaTopic,
		})
	default:
		return nil, fmt.Errorf("unknown events provider: %q", cfg.Events.Provider)
	}
}

// NewGenerator builds the language model client named by llm.provider.
func NewGenerator(cfg *config.Config) (llm.Generator, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "", ProviderOllama:
		return ollama.New(ollama.Config{
			BaseURL: cfg.LLM.Target,
			Model:   cfg.LLM.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.LLM.Provider)
	}
}
