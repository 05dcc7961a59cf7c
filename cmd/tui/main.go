package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/internal/config"
	"github.com/td0m/dayplan/internal/logging"
	"github.com/td0m/dayplan/internal/workspace"
	"github.com/td0m/dayplan/pkg/goal"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:           "dayplan-tui",
		Short:         "Plan your day in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/dayplan/config.yaml)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// the terminal belongs to the UI, so only log to a file
	log, err := logging.New(cfg.Log, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	ws, err := workspace.Open(ctx, *cfg, log)
	if err != nil {
		return err
	}
	defer ws.Close()

	a := newApp(ws.Tasks, ws.Goals, ws.Auth)
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	a.send = p.Send

	stopFollow := ws.Tasks.Follow(func() { p.Send(reloadMsg{}) })
	defer stopFollow()
	// goal writes made from Update must not block on the event loop
	unsubscribe := ws.Goals.Subscribe(func(goals []goal.Goal) { go p.Send(goalsMsg(goals)) })
	defer unsubscribe()
	stopGoals := ws.Goals.Follow(func(goals []goal.Goal) { p.Send(goalsMsg(goals)) })
	defer stopGoals()
	if ws.Bridge != nil {
		sub, err := ws.Bridge.Listen(func(goals []goal.Goal) { p.Send(goalsMsg(goals)) })
		if err != nil {
			log.Warn("not listening for remote goals", zap.Error(err))
		} else {
			defer sub.Unsubscribe()
		}
	}

	_, err = p.Run()
	return err
}
