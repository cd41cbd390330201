package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenameCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <display-name>",
		Short: "Change the account's display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				acct, err := a.engine.Rename(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Display name is now %s\n", acct.DisplayName)
				return nil
			})
		},
	}
}
