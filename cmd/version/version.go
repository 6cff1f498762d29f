// Package versioncmder
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindneox/recall/pkg/cliui"
	"github.com/mindneox/recall/pkg/utils"
)

type VersionCommander struct{}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	return cmd
}

func (c *VersionCommander) run() error {
	fmt.Printf("recall %s\n  %s %s\n  %s %s\n",
		utils.Version,
		cliui.KeyStyle.Render("sha:"), cliui.DimStyle.Render(utils.Sha),
		cliui.KeyStyle.Render("built:"), cliui.DimStyle.Render(utils.Buildtime),
	)
	return nil
}
