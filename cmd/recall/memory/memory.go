// Package memorycmder provides the memory command for reading and clearing
// what recall remembers, straight from the memory store.
package memorycmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/config"
	"github.com/mindneox/recall/pkg/kvstore"
	"github.com/mindneox/recall/pkg/logger"
	"github.com/mindneox/recall/pkg/memory"
	"github.com/mindneox/recall/pkg/services"
)

type memoryCommander struct {
	redisAddr      string
	memoryProvider string

	logger *slog.Logger
	store  kvstore.Store
	svc    *memory.Service
}

var memoryFlags = []string{
	config.FlagRedisAddr,
	config.FlagMemoryProvider,
}

const memoryLongDesc string = `Inspect and manage stored conversation memory.

Subcommands read the memory store directly, so no server needs to be running.

  recall memory history <user_id>     Recent turns for a user, newest first
  recall memory session <session_id>  Every turn in a session, newest first
  recall memory interests <user_id>   Keywords ranked by frequency
  recall memory greeting <user_id>    The greeting a returning user would get
  recall memory forget <user_id>      Delete a user's history and interests`

const memoryShortDesc string = "Inspect and manage stored conversation memory"

func NewMemoryCmd() *cobra.Command {
	cmder := &memoryCommander{}

	cmd := &cobra.Command{
		Use:   "memory",
		Short: memoryShortDesc,
		Long:  memoryLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.open(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if cmder.store == nil {
				return nil
			}
			return cmder.store.Close()
		},
	}

	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagRedisAddr, &cmder.redisAddr)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagMemoryProvider, &cmder.memoryProvider)

	cmd.AddCommand(newHistoryCmd(cmder))
	cmd.AddCommand(newSessionCmd(cmder))
	cmd.AddCommand(newInterestsCmd(cmder))
	cmd.AddCommand(newGreetingCmd(cmder))
	cmd.AddCommand(newForgetCmd(cmder))

	return cmd
}

func (c *memoryCommander) open(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	c.logger = logger.Nop()
	if debug {
		c.logger = logger.New(
			logger.WithDebug(true),
			logger.WithPretty(true),
			logger.WithWriter(cmd.ErrOrStderr()),
		)
	}

	cfg, err := config.Load(cmd, configDir, memoryFlags...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c.store, err = services.NewStore(cfg, c.logger)
	if err != nil {
		return err
	}

	c.svc, err = services.NewMemory(cfg, c.store, c.logger, nil)
	return err
}

// check turns a non-success outcome into a printed warning or an error.
// Degraded results are still printed by the caller.
func check[T any](cmd *cobra.Command, res memory.Result[T]) error {
	switch res.Status {
	case memory.StatusRejected:
		return res.Err
	case memory.StatusDegraded:
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s %v\n", cliui.WarnMark, cliui.DimStyle.Render("partial result:"), res.Err)
	}
	return nil
}
