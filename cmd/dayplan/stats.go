package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/pkg/task"
)

type stats struct {
	Tasks     task.TaskStats     `json:"tasks"`
	Reminders task.ReminderStats `json:"reminders"`
	Goals     goalStats          `json:"goals"`
}

type goalStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	// AverageProgress is over open goals only.
	AverageProgress int `json:"averageProgress"`
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize tasks, reminders and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			s := stats{Tasks: ws.Tasks.Stats(), Reminders: ws.Tasks.ReminderStats()}
			open, sum := 0, 0
			for _, g := range ws.Goals.Goals() {
				s.Goals.Total++
				if g.Completed {
					s.Goals.Completed++
					continue
				}
				open++
				sum += g.Progress
			}
			if open > 0 {
				s.Goals.AverageProgress = sum / open
			}

			if ok, err := c.printJSON(s); ok {
				return err
			}
			t, r, g := s.Tasks, s.Reminders, s.Goals
			fmt.Fprintf(c.out, "tasks:     %d total, %d pending (%d in progress), %d overdue, %d completed\n",
				t.Total, t.Pending, t.InProgress, t.Overdue, t.Completed)
			fmt.Fprintf(c.out, "reminders: %d total, %d today, %d upcoming, %d missed, %d completed\n",
				r.Total, r.Today, r.Upcoming, r.Missed, r.Completed)
			fmt.Fprintf(c.out, "goals:     %d total, %d completed, %d%% average progress\n",
				g.Total, g.Completed, g.AverageProgress)
			return nil
		},
	}
}
