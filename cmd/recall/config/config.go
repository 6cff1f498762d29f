// Package configcmder provides the config command for managing persistent
// recall configuration stored in the .recall/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/config"
)

const configLongDesc string = `Manage persistent recall configuration.

Configuration is stored as config.toml in the .recall/ directory and provides
default values for command flags. CLI flags and RECALL_* environment
variables always take precedence over config file values.

Values resolve in layers: a RECALL_* environment variable wins over
config.toml, which wins over the built-in default. "get" and "list" show
which layer each value comes from.

Keys use dotted notation matching the TOML section structure:
  redis.addr, redis.password, redis.db, redis.timeout,
  memory.provider, memory.history_limit, memory.history_ttl,
  memory.session_ttl, memory.token_min_length,
  api.listen, client.api_target,
  llm.provider, llm.target, llm.model,
  archive.provider, archive.sqlite_path, archive.postgres_dsn,
  events.provider, events.kafka_brokers, events.kafka_topic

Use subcommands to get, set, or list configuration values:
  recall config set <key> <value>    Set a configuration value
  recall config get <key>            Get a configuration value
  recall config list                 List all configuration values

Examples:
  recall config set redis.addr redis.internal:6379
  recall config set memory.history_ttl 168h
  recall config get llm.model
  recall config list`

const configShortDesc string = "Manage persistent recall configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// openConfig validates key (when given) and opens the config the command
// should work against, reporting which file that is on w.
func openConfig(cmd *cobra.Command, key string) (*config.Configer, error) {
	if key != "" && !config.IsValidConfigKey(key) {
		return nil, fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	w := cmd.OutOrStdout()
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
	return cfger, nil
}

// sourceTag renders where a value came from, next to the value.
func sourceTag(key string, source config.Source) string {
	switch source {
	case config.SourceEnv:
		return cliui.DimStyle.Render("(" + config.EnvVar(key) + ")")
	case config.SourceDefault:
		return cliui.DimStyle.Render("(default)")
	default:
		return ""
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
