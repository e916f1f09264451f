// Package commands implements the bmictl operator CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X .../internal/commands.Version=...".
var Version = "dev"

// New returns the root bmictl command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bmictl",
		Short:         "Operator tooling for the BMI widget service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

// AddCommands attaches every subcommand to topLevel.
func AddCommands(topLevel *cobra.Command) {
	addCompute(topLevel)
	addToken(topLevel)
	addHashPassword(topLevel)
	addVersion(topLevel)
}
