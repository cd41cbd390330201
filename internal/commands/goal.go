package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/goals"
	"github.com/mokbank/mokbank/internal/model"
)

const dateLayout = "2006-01-02"

func newGoalCommand(opts *globalOptions) *cobra.Command {
	goalCmd := &cobra.Command{
		Use:   "goal",
		Short: "Savings goals",
	}
	goalCmd.AddCommand(
		newGoalAddCommand(opts),
		newGoalContributeCommand(opts),
		newGoalEditCommand(opts),
		newGoalListCommand(opts),
	)
	return goalCmd
}

func newGoalAddCommand(opts *globalOptions) *cobra.Command {
	var target, category, due, priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a savings goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(target)
			if err != nil {
				return err
			}
			p := goals.NewParams{
				Title:    args[0],
				Target:   amount,
				Category: category,
				Priority: model.Priority(priority),
			}
			if due != "" {
				if p.DueDate, err = time.Parse(dateLayout, due); err != nil {
					return fmt.Errorf("parsing --due %q: %w", due, err)
				}
			}
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				g, err := a.engine.CreateGoal(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created goal %q (%s), target %s\n", g.Title, g.ID, g.TargetAmount.StringFixed(2))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "target amount (required)")
	_ = cmd.MarkFlagRequired("target")
	cmd.Flags().StringVar(&category, "category", "", "goal category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "low, medium or high")

	return cmd
}

// goalEditFlags are the optional replacements shared by contribute and edit.
type goalEditFlags struct {
	due      string
	priority string
}

func (f *goalEditFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "new priority: low, medium or high")
}

func (f *goalEditFlags) edits() (*goals.Edits, error) {
	if f.due == "" && f.priority == "" {
		return nil, nil
	}
	var e goals.Edits
	if f.due != "" {
		d, err := time.Parse(dateLayout, f.due)
		if err != nil {
			return nil, fmt.Errorf("parsing --due %q: %w", f.due, err)
		}
		e.DueDate = &d
	}
	if f.priority != "" {
		p, err := model.ParsePriority(f.priority)
		if err != nil {
			return nil, err
		}
		e.Priority = &p
	}
	return &e, nil
}

func newGoalContributeCommand(opts *globalOptions) *cobra.Command {
	var flags goalEditFlags

	cmd := &cobra.Command{
		Use:   "contribute <goal-id> <amount>",
		Short: "Move savings into a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			edits, err := flags.edits()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.engine.Contribute(cmd.Context(), args[0], amount, edits)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Saved %s toward %q: %s of %s (%s%%)\n",
					amount.StringFixed(2), res.Goal.Title,
					res.Goal.CurrentAmount.StringFixed(2), res.Goal.TargetAmount.StringFixed(2),
					res.Goal.Progress().Shift(2).StringFixed(0))
				if res.Goal.Complete() {
					fmt.Fprintln(out, "Goal reached!")
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newGoalEditCommand(opts *globalOptions) *cobra.Command {
	var flags goalEditFlags

	cmd := &cobra.Command{
		Use:   "edit <goal-id>",
		Short: "Change a goal's due date or priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := flags.edits()
			if err != nil {
				return err
			}
			if edits == nil {
				return fmt.Errorf("nothing to edit: pass --due and/or --priority")
			}
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				g, err := a.engine.EditGoal(cmd.Context(), args[0], edits)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated goal %q: priority %s, due %s\n", g.Title, g.Priority, formatDate(g.DueDate))
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newGoalListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List savings goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, cmd.ErrOrStderr(), func(a *app) error {
				gs, err := a.engine.Goals(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(gs) == 0 {
					fmt.Fprintln(out, "No goals yet.")
					return nil
				}
				for _, g := range gs {
					status := ""
					if g.Complete() {
						status = " done"
					}
					fmt.Fprintf(out, "%s  %-24s %8s / %-8s %-6s due %s%s\n",
						g.ID, g.Title, g.CurrentAmount.StringFixed(2), g.TargetAmount.StringFixed(2),
						g.Priority, formatDate(g.DueDate), status)
				}
				return nil
			})
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
