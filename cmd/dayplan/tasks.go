package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/internal/ui"
	"github.com/td0m/dayplan/pkg/task"
	"github.com/td0m/dayplan/pkg/task/date"
)

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(c.tasksListCmd(), c.tasksAddCmd(), c.tasksDoneCmd(true), c.tasksDoneCmd(false), c.tasksDueCmd(), c.tasksRmCmd())
	return cmd
}

func (c *cli) tasksListCmd() *cobra.Command {
	var today, overdue bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			var tasks []task.Task
			switch {
			case today:
				tasks = ws.Tasks.Today()
			case overdue:
				tasks = ws.Tasks.Overdue()
			default:
				tasks = ws.Tasks.Tasks()
			}
			if ok, err := c.printJSON(tasks); ok {
				return err
			}
			c.printTasks(tasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "only tasks due today")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only overdue tasks")
	cmd.MarkFlagsMutuallyExclusive("today", "overdue")
	return cmd
}

func (c *cli) printTasks(tasks []task.Task) {
	now := c.now()
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE\tCATEGORY")
	for _, t := range tasks {
		status := string(t.Status)
		if t.IsOverdue(now) {
			status = "overdue"
		}
		due := "-"
		if !t.DueDate.IsZero() {
			due = ui.FormatDue(t.DueDate, now)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, status, due, t.Category)
	}
	w.Flush()
}

func (c *cli) tasksAddCmd() *cobra.Command {
	var (
		due, priority, category, description string
		status                               string
	)
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a task",
		Long: `Add a task.

Examples:
  dayplan tasks add Call the bank --due "fri 10:00" --priority high
  dayplan tasks add Water plants --due tomorrow --category Home`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := task.Task{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    task.Priority(priority),
				Category:    category,
				Status:      task.Status(status),
			}
			if due != "" {
				d, err := date.ParseTime(due, c.now())
				if err != nil {
					return fmt.Errorf("parsing due date %q: %w", due, err)
				}
				t.DueDate = d
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			added, err := ws.Tasks.Add(t)
			if err != nil {
				return err
			}
			if ok, err := c.printJSON(added); ok {
				return err
			}
			fmt.Fprintf(c.out, "added task %d\n", added.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&due, "due", "d", "", `due date, e.g. "tomorrow", "fri 18:00", "21/04/2026"`)
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "pending or in_progress")
	return cmd
}

func (c *cli) tasksDoneCmd(done bool) *cobra.Command {
	use, short := "done ID", "Mark a task as completed"
	if !done {
		use, short = "undo ID", "Mark a task as not completed"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			status := task.Completed
			if !done {
				status = task.Pending
			}
			return taskErr(id, ws.Tasks.Update(id, task.TaskPatch{Completed: &done, Status: &status}))
		},
	}
}

func (c *cli) tasksDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due ID [DATE...]",
		Short: "Set or clear the due date of a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var due time.Time
			if len(args) > 1 {
				s := strings.Join(args[1:], " ")
				if due, err = date.ParseTime(s, c.now()); err != nil {
					return fmt.Errorf("parsing due date %q: %w", s, err)
				}
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			return taskErr(id, ws.Tasks.Update(id, task.TaskPatch{DueDate: &due}))
		},
	}
}

func (c *cli) tasksRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its reminders",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			return taskErr(id, ws.Tasks.Delete(id))
		},
	}
}

func taskErr(id int, err error) error {
	if errors.Is(err, task.ErrNotFound) {
		return fmt.Errorf("task %d: %w", id, err)
	}
	return err
}
