package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
)

func newConvertCommand(opts *globalOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <tokens>",
		Short: "Convert MokTokens to cash, USDC or travel miles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing token amount %q: %w", args[0], err)
			}
			asset, err := rates.ParseAsset(to)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.engine.Convert(cmd.Context(), amount, asset)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d MokTokens to %s %s (%d tokens left)\n",
					amount, res.Credited.String(), asset, res.Account.MokTokens)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", string(rates.AssetCash), "target asset: cash, usdc or travel_miles")

	return cmd
}

func newTransferCommand(opts *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "transfer <amount>",
		Short: "Move money between sub-accounts",
		Long: "Move money between savings, investment, crypto, usdc and travel_miles.\n" +
			"Moving money into investment earns MokTokens and XP; moving it out costs them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			src, err := model.ParseAccountField(from)
			if err != nil {
				return err
			}
			dst, err := model.ParseAccountField(to)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.engine.Transfer(cmd.Context(), amount, src, dst)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Moved %s from %s to %s\n", amount.StringFixed(2), src, dst)
				if !res.Reward.IsZero() {
					fmt.Fprintf(out, "  %+d MokTokens, %+d XP\n", res.Reward.Tokens, res.Reward.XP)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", string(model.FieldSavings), "source sub-account")
	cmd.Flags().StringVar(&to, "to", string(model.FieldInvestment), "destination sub-account")

	return cmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
