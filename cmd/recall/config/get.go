package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
)

const getLongDesc string = `Get a configuration value.

Prints the value the key resolves to and where it comes from: a RECALL_*
environment variable, the config.toml file in the .recall/ directory, or
the default.

Examples:
  recall config get redis.addr
  recall config get memory.history_limit`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             getShortDesc,
		Long:              getLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			cfger, err := openConfig(cmd, key)
			if err != nil {
				return err
			}

			value, source, err := cfger.Lookup(key)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n\n", cliui.KeyValue(key, len(key), value), sourceTag(key, source))
			return nil
		},
	}
}
