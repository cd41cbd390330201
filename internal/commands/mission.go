package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMissionCommand(opts *globalOptions) *cobra.Command {
	missionCmd := &cobra.Command{
		Use:   "mission",
		Short: "Chores that pay MokTokens and XP once",
	}
	missionCmd.AddCommand(
		newMissionAddCommand(opts),
		newMissionCompleteCommand(opts),
		newMissionListCommand(opts),
	)
	return missionCmd
}

func newMissionAddCommand(opts *globalOptions) *cobra.Command {
	var reward int64

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				m, err := a.engine.AddMission(cmd.Context(), args[0], reward)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added mission %q (%s) worth %d MokTokens\n", m.Title, m.ID, m.Reward)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&reward, "reward", 0, "MokTokens paid on completion (required)")
	_ = cmd.MarkFlagRequired("reward")

	return cmd
}

func newMissionCompleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <mission-id>",
		Short: "Complete a mission and collect its reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.engine.CompleteMission(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed %q: +%d MokTokens, +%d XP (level %d)\n",
					res.Mission.Title, res.Reward.Tokens, res.Reward.XP, res.Account.Level)
				return nil
			})
		},
	}
}

func newMissionListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				ms, err := a.engine.Missions(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(ms) == 0 {
					fmt.Fprintln(out, "No missions yet.")
					return nil
				}
				for _, m := range ms {
					mark := "[ ]"
					if m.Completed {
						mark = "[x]"
					}
					fmt.Fprintf(out, "%s %s  %-28s %4d tokens\n", mark, m.ID, m.Title, m.Reward)
				}
				return nil
			})
		},
	}
}
