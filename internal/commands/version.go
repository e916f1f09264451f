package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addVersion(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the bmictl version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "bmictl %s\n", Version)
			return err
		},
	}

	topLevel.AddCommand(cmd)
}
