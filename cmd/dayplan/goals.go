package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/pkg/goal"
	"go.uber.org/zap"
)

func (c *cli) goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal", "g"},
		Short:   "Manage goals",
	}
	cmd.AddCommand(
		c.goalsListCmd(),
		c.goalsAddCmd(),
		c.goalsProgressCmd(),
		c.goalsMilestoneCmd(),
		c.goalsCompleteCmd(),
		c.goalsWatchCmd(),
	)
	return cmd
}

func (c *cli) printGoals(goals []goal.Goal) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPROGRESS\tPRIORITY\tCATEGORY\tMILESTONE")
	for _, g := range goals {
		progress := strconv.Itoa(g.Progress) + "%"
		if g.Completed {
			progress = "done"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", g.ID, g.Title, progress, g.Priority, g.Category, g.Milestone)
	}
	return w.Flush()
}

func (c *cli) goalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			goals := ws.Goals.Goals()
			if ok, err := c.printJSON(goals); ok {
				return err
			}
			return c.printGoals(goals)
		},
	}
}

func (c *cli) goalsAddCmd() *cobra.Command {
	var g goal.Goal
	var priority string
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.Title = strings.Join(args, " ")
			g.Priority = goal.Priority(priority)
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			created, err := ws.Goals.Create(g)
			if err != nil {
				return err
			}
			if ok, err := c.printJSON(created); ok {
				return err
			}
			fmt.Fprintf(c.out, "added goal %d\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&g.Category, "category", "", "category")
	cmd.Flags().StringVar(&g.TargetDate, "target-date", "", `when the goal should be reached, e.g. "June 2027"`)
	cmd.Flags().StringVar(&g.Description, "description", "", "description")
	cmd.Flags().Float64Var(&g.TargetValue, "target", 0, "target value")
	cmd.Flags().StringVar(&g.Unit, "unit", "", "unit of the target value")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	return cmd
}

func (c *cli) goalsProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress ID PERCENT",
		Short: "Set the progress of a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			progress, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
			if err != nil {
				return fmt.Errorf("invalid progress %q", args[1])
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			_, ok, err := ws.Goals.Update(id, goal.Patch{Progress: &progress})
			return goalErr(id, ok, err)
		},
	}
}

func (c *cli) goalsMilestoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "milestone ID TITLE...",
		Short: "Record a milestone reached on a goal",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			_, ok, err := ws.Goals.AddMilestone(id, strings.Join(args[1:], " "))
			return goalErr(id, ok, err)
		},
	}
}

func (c *cli) goalsCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete TITLE...",
		Short: "Complete a goal by its title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			g, ok, err := ws.Goals.CompleteByTitle(title)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no goal titled %q", title)
			}
			fmt.Fprintf(c.out, "completed goal %d\n", g.ID)
			return nil
		},
	}
}

// goalsWatchCmd prints the goal list every time it changes, locally or,
// with NATS configured, in another process.
func (c *cli) goalsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print goals whenever they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			updates := make(chan []goal.Goal, 16)
			push := func(goals []goal.Goal) {
				select {
				case updates <- goals:
				default:
					c.log.Warn("dropping goal update, printer is behind")
				}
			}
			unsubscribe := ws.Goals.Subscribe(push)
			defer unsubscribe()
			if ws.Bridge != nil {
				sub, err := ws.Bridge.Listen(push)
				if err != nil {
					return err
				}
				defer sub.Unsubscribe()
			} else {
				c.log.Info("nats is not configured, only local changes are shown")
			}

			if err := c.printGoals(ws.Goals.Goals()); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case goals := <-updates:
					c.log.Debug("goals changed", zap.Int("goals", len(goals)))
					fmt.Fprintln(c.out)
					if err := c.printGoals(goals); err != nil {
						return err
					}
				}
			}
		},
	}
}

func goalErr(id int, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("goal %d not found", id)
	}
	return nil
}
