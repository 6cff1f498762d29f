// Package recallcmder
package recallcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/mindneox/recall/cmd/recall/chat"
	configcmder "github.com/mindneox/recall/cmd/recall/config"
	memorycmder "github.com/mindneox/recall/cmd/recall/memory"
	servecmder "github.com/mindneox/recall/cmd/recall/serve"
	versioncmder "github.com/mindneox/recall/cmd/version"
)

const recallLongDesc string = `Recall remembers conversations.

It keeps a bounded, expiring history of every user's chat turns, learns
which topics each user keeps coming back to, and uses both to greet
returning users and to give the model context for the next reply.

Run the server:
  recall serve                    Run the HTTP API (memory, chat, MCP, metrics)

Work with stored memory:
  recall memory history <user>    Show a user's recent turns
  recall memory greeting <user>   Show the greeting a user would get

Talk to a running server:
  recall chat                     Interactive chat that resumes your session`

const recallShortDesc string = "Recall - conversation memory and prediction"

func NewRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recall",
		Short:         recallShortDesc,
		Long:          recallLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .recall/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(memorycmder.NewMemoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
