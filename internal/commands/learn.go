package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLearnCommand(opts *globalOptions) *cobra.Command {
	learnCmd := &cobra.Command{
		Use:   "learn",
		Short: "Learning modules",
	}
	learnCmd.AddCommand(newLearnListCommand(opts), newLearnCompleteCommand(opts))
	return learnCmd
}

func newLearnListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List modules and your progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				out := cmd.OutOrStdout()
				for _, m := range a.engine.Catalog().All() {
					p, err := a.engine.Progress(cmd.Context(), m.ID)
					if err != nil {
						return err
					}
					status := "new"
					if p.Completions > 0 {
						status = fmt.Sprintf("best %d/%d, done %dx", p.BestScore, m.TotalPoints, p.Completions)
					}
					fmt.Fprintf(out, "%-18s %-34s %4d XP  %s\n", m.ID, m.Title, m.XPReward, status)
				}
				return nil
			})
		},
	}
}

func newLearnCompleteCommand(opts *globalOptions) *cobra.Command {
	var score int64

	cmd := &cobra.Command{
		Use:   "complete <module-id>",
		Short: "Record a finished module and its quiz score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.engine.CompleteModule(cmd.Context(), args[0], score)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if res.Reward.IsZero() {
					fmt.Fprintf(out, "Completed %s again (best score %d); no reward this time\n", args[0], res.Progress.BestScore)
					return nil
				}
				fmt.Fprintf(out, "Completed %s: +%d MokTokens, +%d XP (level %d)\n",
					args[0], res.Reward.Tokens, res.Reward.XP, res.Account.Level)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&score, "score", 0, "quiz score")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}
