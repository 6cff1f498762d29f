package memorycmder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/memory"
	"github.com/mindneox/recall/pkg/utils"
)

const (
	previewLen = 120

	// width of the "    assistant " label column
	previewIndent = 14
)

func newHistoryCmd(cmder *memoryCommander) *cobra.Command {
	var (
		limit int64
		full  bool
	)

	cmd := &cobra.Command{
		Use:   "history <user_id>",
		Short: "Show a user's recent turns, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := cmder.svc.History(cmd.Context(), args[0], limit)
			if err := check(cmd, res); err != nil {
				return err
			}
			printTurns(cmd.OutOrStdout(), args[0], res.Value, full)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&limit, "limit", "n", memory.DefaultHistoryLimit, "Maximum number of turns to show")
	cmd.Flags().BoolVar(&full, "full", false, "Print whole messages instead of one-line previews")

	return cmd
}

func newSessionCmd(cmder *memoryCommander) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "session <session_id>",
		Short: "Show every turn in a session, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := cmder.svc.SessionHistory(cmd.Context(), args[0])
			if err := check(cmd, res); err != nil {
				return err
			}
			printTurns(cmd.OutOrStdout(), args[0], res.Value, full)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print whole messages instead of one-line previews")

	return cmd
}

// previewWidth is the number of cells a message preview may use on w.
func previewWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return previewLen
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= previewIndent*2 {
		return previewLen
	}
	return cols - previewIndent
}

func printTurns(w io.Writer, owner string, turns []memory.Turn, full bool) {
	fmt.Fprintf(w, "\n  %s %s\n\n",
		cliui.KeyStyle.Render(owner),
		cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", len(turns))),
	)

	if len(turns) == 0 {
		fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("Nothing remembered."))
		return
	}

	preview := func(s string) string { return s }
	if !full {
		width := previewWidth(w)
		preview = func(s string) string { return utils.Truncate(s, width) }
	}

	for _, t := range turns {
		when := "unknown time"
		if !t.Timestamp.IsZero() {
			when = t.Timestamp.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "  %s %s\n", cliui.DimStyle.Render(when), cliui.DimStyle.Render(t.SessionID))
		fmt.Fprintf(w, "    %s %s\n", cliui.UserStyle.Render("user"), preview(t.UserMessage))
		fmt.Fprintf(w, "    %s %s\n\n", cliui.AgentStyle.Render("assistant"), preview(t.AssistantResponse))
	}
}
