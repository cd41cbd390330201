package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/txlog"
)

const monthLayout = "2006-01"

type historyOptions struct {
	txType   string
	category string
	month    string
	verify   bool
}

func newHistoryCommand(global *globalOptions) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.filter()
			if err != nil {
				return err
			}
			if opts.verify && opts.month == "" {
				return fmt.Errorf("--verify needs --month")
			}
			return withApp(cmd.Context(), global, cmd.ErrOrStderr(), func(a *app) error {
				if opts.verify {
					return runVerify(cmd, a, f)
				}
				txs, err := a.history.History(cmd.Context(), f)
				if err != nil {
					return err
				}
				printTransactions(cmd.OutOrStdout(), txs)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.txType, "type", "", "only income, expense or saving")
	cmd.Flags().StringVar(&opts.category, "category", "", "only this category")
	cmd.Flags().StringVar(&opts.month, "month", "", "only this month (YYYY-MM)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "check the month's journal for audit rule violations")

	return cmd
}

func (o historyOptions) filter() (txlog.Filter, error) {
	var f txlog.Filter
	if o.txType != "" {
		t, err := model.ParseTransactionType(o.txType)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	f.Category = o.category
	if o.month != "" {
		m, err := time.Parse(monthLayout, o.month)
		if err != nil {
			return f, fmt.Errorf("parsing --month %q: %w", o.month, err)
		}
		f.From = m
		f.To = m.AddDate(0, 1, 0)
	}
	return f, nil
}

// runVerify checks every record of the month, ignoring type and category.
func runVerify(cmd *cobra.Command, a *app, f txlog.Filter) error {
	out := cmd.OutOrStdout()
	txs, err := a.history.History(cmd.Context(), txlog.Filter{From: f.From, To: f.To})
	if err != nil {
		return err
	}
	verrs := txlog.Validate(txs)
	if len(verrs) == 0 {
		fmt.Fprintf(out, "%d transactions OK\n", len(txs))
		return nil
	}
	for _, ve := range verrs {
		fmt.Fprintln(out, ve.Error())
	}
	return fmt.Errorf("%d audit violations", len(verrs))
}

func printTransactions(out io.Writer, txs []model.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions.")
		return
	}
	for _, tx := range txs {
		fmt.Fprintf(out, "%s  %-7s %12s  %-12s %s\n",
			tx.Date.Format(dateLayout), tx.Type, tx.Amount.String(), tx.Category, tx.Description)
	}
}
