package config

const (
	defaultRedisAddr    = "localhost:6379"
	defaultRedisTimeout = "2s"

	defaultMemoryProvider = "redis"
	defaultHistoryLimit   = 20
	defaultHistoryTTL     = "720h"
	defaultSessionTTL     = "1h"
	defaultTokenMinLength = 5

	defaultAPIListen       = ":8000"
	defaultClientAPITarget = "http://localhost:8000"

	defaultLLMProvider = "ollama"
	defaultLLMTarget   = "http://localhost:11434"
	defaultLLMModel    = "mistral"

	defaultKafkaTopic = "recall.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Redis: RedisConfig{
			Addr:    defaultRedisAddr,
			Timeout: defaultRedisTimeout,
		},
		Memory: MemoryConfig{
			Provider:       defaultMemoryProvider,
			HistoryLimit:   defaultHistoryLimit,
			HistoryTTL:     defaultHistoryTTL,
			SessionTTL:     defaultSessionTTL,
			TokenMinLength: defaultTokenMinLength,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Target:   defaultLLMTarget,
			Model:    defaultLLMModel,
		},
		Events: EventsConfig{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}
