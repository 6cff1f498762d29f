package config

import (
	"fmt"
	"os"
	"strings"
)

const envPrefix = "RECALL"

// Source says which layer an effective config value comes from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
)

// EnvVar returns the environment variable that overrides key,
// e.g. "llm.model" -> "RECALL_LLM_MODEL".
func EnvVar(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Lookup returns the value key resolves to without command line flags, and
// the layer it came from. A file value equal to the default reports
// SourceDefault.
func (c *Configer) Lookup(key string) (string, Source, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", "", fmt.Errorf("unknown config key: %q", key)
	}

	if v, ok := os.LookupEnv(EnvVar(key)); ok && v != "" {
		return v, SourceEnv, nil
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", "", err
	}

	value := info.get(cfg)
	if value == info.get(NewDefaultConfig()) {
		return value, SourceDefault, nil
	}
	return value, SourceFile, nil
}
