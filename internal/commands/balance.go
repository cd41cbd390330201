package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/ledger"
	"github.com/mokbank/mokbank/internal/model"
)

func newBalanceCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show tokens, XP, level and every sub-account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				acct, err := a.engine.Account(cmd.Context())
				if err != nil {
					return err
				}
				printAccount(cmd.OutOrStdout(), acct, a.engine.Table().LevelStep)
				return nil
			})
		},
	}
}

func printAccount(w io.Writer, acct model.Account, levelStep int64) {
	into, toNext := ledger.LevelProgress(acct, levelStep)
	fmt.Fprintf(w, "%s (%s)\n", acct.DisplayName, acct.UserID)
	fmt.Fprintf(w, "  MokTokens:    %d\n", acct.MokTokens)
	fmt.Fprintf(w, "  XP:           %d (level %d, %d into level, %d to next)\n", acct.XP, acct.Level, into, toNext)
	fmt.Fprintf(w, "  Savings:      %s\n", acct.Savings.StringFixed(2))
	fmt.Fprintf(w, "  Investment:   %s\n", acct.Investment.StringFixed(2))
	fmt.Fprintf(w, "  Crypto:       %s\n", acct.Crypto.String())
	fmt.Fprintf(w, "  USDC:         %s\n", acct.USDC.StringFixed(2))
	fmt.Fprintf(w, "  Travel miles: %s\n", acct.TravelMiles.String())
}
