package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCryptoCommand(opts *globalOptions) *cobra.Command {
	cryptoCmd := &cobra.Command{
		Use:   "crypto",
		Short: "Crypto wallet notifications",
	}
	cryptoCmd.AddCommand(newCryptoDepositCommand(opts))
	return cryptoCmd
}

func newCryptoDepositCommand(opts *globalOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Record an incoming crypto deposit awaiting parent approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				tx, err := a.engine.DepositCrypto(cmd.Context(), amount, source)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tx.Description)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "external wallet", "who sent the deposit")

	return cmd
}
