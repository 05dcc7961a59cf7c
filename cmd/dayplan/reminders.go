package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/internal/ui"
	"github.com/td0m/dayplan/pkg/task"
	"github.com/td0m/dayplan/pkg/task/date"
)

func (c *cli) remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminders",
		Aliases: []string{"reminder", "r"},
		Short:   "Manage reminders",
	}
	cmd.AddCommand(c.remindersListCmd(), c.remindersAddCmd(), c.remindersDoneCmd(), c.remindersRmCmd())
	return cmd
}

func (c *cli) remindersListCmd() *cobra.Command {
	var today bool
	var taskID int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List reminders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			var reminders []task.Reminder
			switch {
			case today:
				reminders = ws.Tasks.TodayReminders()
			case taskID > 0:
				reminders = ws.Tasks.RemindersFor(taskID)
			default:
				reminders = ws.Tasks.Reminders()
			}
			if ok, err := c.printJSON(reminders); ok {
				return err
			}

			now := c.now()
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTASK\tTITLE\tSTATUS\tAT\tVIA")
			for _, r := range reminders {
				at, linked := "-", "-"
				if !r.ReminderTime.IsZero() {
					at = ui.FormatDue(r.ReminderTime, now) + r.ReminderTime.Format(" 15:04")
				}
				if r.TaskID != 0 {
					linked = fmt.Sprint(r.TaskID)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, linked, r.Title, r.Status, at, r.NotificationMethod)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "only unfinished reminders set for today")
	cmd.Flags().IntVar(&taskID, "task", 0, "only reminders of this task")
	return cmd
}

func (c *cli) remindersAddCmd() *cobra.Command {
	var (
		at, via, frequency, note string
		taskID                   int
	)
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a reminder",
		Long: `Add a reminder, optionally linked to a task.

Examples:
  dayplan reminders add Send the draft --task 1 --at "today 15:00"
  dayplan reminders add Stretch --at 11am --frequency daily`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := task.Reminder{
				TaskID:             taskID,
				Title:              strings.Join(args, " "),
				Frequency:          task.Frequency(frequency),
				NotificationMethod: task.NotificationMethod(via),
				Note:               note,
			}
			if at != "" {
				t, err := date.ParseTime(at, c.now())
				if err != nil {
					return fmt.Errorf("parsing reminder time %q: %w", at, err)
				}
				r.ReminderTime = t
				if date.SameDay(t, c.now()) {
					r.Status = task.Today
				}
			}
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if taskID != 0 {
				t, ok := ws.Tasks.Task(taskID)
				if !ok {
					return fmt.Errorf("task %d: %w", taskID, task.ErrNotFound)
				}
				r.DueDate = t.DueDate
				r.Category = t.Category
				r.Priority = t.Priority
			}
			added, err := ws.Tasks.AddReminder(r)
			if err != nil {
				return err
			}
			if ok, err := c.printJSON(added); ok {
				return err
			}
			fmt.Fprintf(c.out, "added reminder %d\n", added.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `when to remind, e.g. "tomorrow at 9:00"`)
	cmd.Flags().IntVar(&taskID, "task", 0, "id of the task this reminder belongs to")
	cmd.Flags().StringVar(&via, "via", "", "app, email or both")
	cmd.Flags().StringVar(&frequency, "frequency", "", "once, daily or multiple")
	cmd.Flags().StringVar(&note, "note", "", "note")
	return cmd
}

func (c *cli) remindersDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a reminder as completed",
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
			status := task.ReminderComplete
			return reminderErr(id, ws.Tasks.UpdateReminder(id, task.ReminderPatch{Status: &status}))
		},
	}
}

func (c *cli) remindersRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a reminder",
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
			return reminderErr(id, ws.Tasks.DeleteReminder(id))
		},
	}
}

func reminderErr(id int, err error) error {
	if errors.Is(err, task.ErrNotFound) {
		return fmt.Errorf("reminder %d: %w", id, err)
	}
	return err
}
