package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fropcore/bmiwidget/pkg/crypto"
)

func addHashPassword(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash suitable for auth.admin.password_hash.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := crypto.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	topLevel.AddCommand(cmd)
}
