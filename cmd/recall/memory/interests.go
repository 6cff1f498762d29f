package memorycmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/memory"
)

func newInterestsCmd(cmder *memoryCommander) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "interests <user_id>",
		Short: "Show a user's keywords ranked by frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := cmder.svc.Interests(cmd.Context(), args[0], limit)
			if err := check(cmd, res); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w)
			if len(res.Value) == 0 {
				fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("No interests recorded."))
				return nil
			}

			width := 0
			for _, k := range res.Value {
				width = max(width, len(k.Keyword))
			}
			for _, k := range res.Value {
				fmt.Fprintf(w, "  %s\n", cliui.KeyValue(k.Keyword, width, strconv.FormatInt(k.Frequency, 10)))
			}
			fmt.Fprintln(w)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&limit, "limit", "n", memory.DefaultProfileKeywords, "Maximum number of keywords to show")

	return cmd
}

func newGreetingCmd(cmder *memoryCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "greeting <user_id>",
		Short: "Show the greeting a returning user would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := cmder.svc.Predict(cmd.Context(), args[0])
			if err := check(cmd, res); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s %s\n\n", cliui.AgentStyle.Render("recall>"), res.Value.Greeting)
			return nil
		},
	}
}

func newForgetCmd(cmder *memoryCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <user_id>",
		Short: "Delete a user's history and interests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := cmder.svc.Forget(cmd.Context(), args[0])
			if !res.OK() {
				return fmt.Errorf("forgetting %s: %w", args[0], res.Err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Forgot %s\n\n", cliui.SuccessMark, cliui.KeyStyle.Render(args[0]))
			return nil
		},
	}
}
