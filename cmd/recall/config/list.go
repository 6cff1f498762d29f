package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays every configuration key grouped by its config.toml section, with
the value it resolves to and where that value comes from.

Examples:
  recall config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfger, err := openConfig(cmd, "")
			if err != nil {
				return err
			}

			keys := config.ValidConfigKeys()
			width := 0
			for _, k := range keys {
				_, name, _ := strings.Cut(k, ".")
				width = max(width, len(name))
			}

			w := cmd.OutOrStdout()
			section := ""
			for _, key := range keys {
				value, source, err := cfger.Lookup(key)
				if err != nil {
					return err
				}

				sec, name, _ := strings.Cut(key, ".")
				if sec != section {
					if section != "" {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "  %s\n", cliui.SectionStyle.Render("["+sec+"]"))
					section = sec
				}
				fmt.Fprintf(w, "    %s %s\n", cliui.KeyValue(name, width, value), sourceTag(key, source))
			}
			fmt.Fprintln(w)

			return nil
		},
	}
}
