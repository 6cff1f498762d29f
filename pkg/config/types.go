package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent recall configuration stored as config.toml
// in the .recall/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Redis   RedisConfig   `toml:"redis"`
	Memory  MemoryConfig  `toml:"memory"`
	API     APIConfig     `toml:"api"`
	Client  ClientConfig  `toml:"client"`
	LLM     LLMConfig     `toml:"llm"`
	Archive ArchiveConfig `toml:"archive"`
	Events  EventsConfig  `toml:"events"`
}

// RedisConfig holds the key-value store connection.
type RedisConfig struct {
	Addr     string `toml:"addr,omitempty"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db,omitempty"`
	Timeout  string `toml:"timeout,omitempty"`
}

// MemoryConfig holds the conversation memory bounds.
// Durations use Go duration syntax ("720h", "1h").
type MemoryConfig struct {
	Provider       string `toml:"provider,omitempty"`
	HistoryLimit   int    `toml:"history_limit,omitempty"`
	HistoryTTL     string `toml:"history_ttl,omitempty"`
	SessionTTL     string `toml:"session_ttl,omitempty"`
	TokenMinLength int    `toml:"token_min_length,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// server (e.g. recall chat). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// LLMConfig holds the language model used by the chat endpoint.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// ArchiveConfig selects the durable turn archive. An empty provider
// disables it.
type ArchiveConfig struct {
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig selects where turn events are published. An empty provider
// disables publishing.
type EventsConfig struct {
	Provider     string `toml:"provider,omitempty"`
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for %s: expected a non-negative integer, got %q", name, v)
			}
			*field(c) = n
			return nil
		},
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid value for %s: expected a positive duration, got %q", name, v)
			}
			*field(c) = v
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"redis.addr":              stringKey(func(c *Config) *string { return &c.Redis.Addr }),
	"redis.password":          stringKey(func(c *Config) *string { return &c.Redis.Password }),
	"redis.db":                intKey("redis.db", func(c *Config) *int { return &c.Redis.DB }),
	"redis.timeout":           durationKey("redis.timeout", func(c *Config) *string { return &c.Redis.Timeout }),
	"memory.provider":         stringKey(func(c *Config) *string { return &c.Memory.Provider }),
	"memory.history_limit":    intKey("memory.history_limit", func(c *Config) *int { return &c.Memory.HistoryLimit }),
	"memory.history_ttl":      durationKey("memory.history_ttl", func(c *Config) *string { return &c.Memory.HistoryTTL }),
	"memory.session_ttl":      durationKey("memory.session_ttl", func(c *Config) *string { return &c.Memory.SessionTTL }),
	"memory.token_min_length": intKey("memory.token_min_length", func(c *Config) *int { return &c.Memory.TokenMinLength }),
	"api.listen":              stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target":       stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"llm.provider":            stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.target":              stringKey(func(c *Config) *string { return &c.LLM.Target }),
	"llm.model":               stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"archive.provider":        stringKey(func(c *Config) *string { return &c.Archive.Provider }),
	"archive.sqlite_path":     stringKey(func(c *Config) *string { return &c.Archive.SQLitePath }),
	"archive.postgres_dsn":    stringKey(func(c *Config) *string { return &c.Archive.PostgresDSN }),
	"events.provider":         stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.kafka_brokers":    stringKey(func(c *Config) *string { return &c.Events.KafkaBrokers }),
	"events.kafka_topic":      stringKey(func(c *Config) *string { return &c.Events.KafkaTopic }),
}

// orderedKeys lists configKeys in the TOML section order.
var orderedKeys = []string{
	"redis.addr",
	"redis.password",
	"redis.db",
	"redis.timeout",
	"memory.provider",
	"memory.history_limit",
	"memory.history_ttl",
	"memory.session_ttl",
	"memory.token_min_length",
	"api.listen",
	"client.api_target",
	"llm.provider",
	"llm.target",
	"llm.model",
	"archive.provider",
	"archive.sqlite_path",
	"archive.postgres_dsn",
	"events.provider",
	"events.kafka_brokers",
	"events.kafka_topic",
}

// TimeoutDuration parses Timeout. Empty means zero, letting the driver
// pick its default.
func (r RedisConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("redis.timeout", r.Timeout)
}

// HistoryTTLDuration parses HistoryTTL.
func (m MemoryConfig) HistoryTTLDuration() (time.Duration, error) {
	return parseDuration("memory.history_ttl", m.HistoryTTL)
}

// SessionTTLDuration parses SessionTTL.
func (m MemoryConfig) SessionTTLDuration() (time.Duration, error) {
	return parseDuration("memory.session_ttl", m.SessionTTL)
}

// Brokers splits KafkaBrokers on commas, dropping blanks.
func (e EventsConfig) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(e.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
