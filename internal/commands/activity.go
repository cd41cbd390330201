package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/activity"
)

func newActivityCommand(opts *globalOptions) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent operations from the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(opts.dataDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			entries, err := activity.Tail(dir, last)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No activity yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-16s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Op, e.Summary)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 20, "number of entries to show (0 for all)")

	return cmd
}
