package configcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .recall/ directory. Integer keys must be numbers and
duration keys use Go duration syntax ("720h", "90m").

Examples:
  recall config set redis.addr localhost:6380
  recall config set memory.history_limit 50
  recall config set archive.provider sqlite
  recall config set events.kafka_brokers kafka-1:9092,kafka-2:9092`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             setShortDesc,
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			cfger, err := openConfig(cmd, key)
			if err != nil {
				return err
			}

			if err := cfger.SetConfigValue(key, value); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "  %s Set %s = %s\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(key),
				cliui.ValueStyle.Render(value),
			)
			if env := config.EnvVar(key); os.Getenv(env) != "" {
				fmt.Fprintf(w, "  %s %s is set and takes precedence over this value\n",
					cliui.WarnMark, cliui.KeyStyle.Render(env))
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}
