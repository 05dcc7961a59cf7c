// Command dayplan manages tasks, reminders and goals from the shell and
// runs the chat relay.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/td0m/dayplan/internal/config"
	"github.com/td0m/dayplan/internal/logging"
	"github.com/td0m/dayplan/internal/workspace"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli is the state shared by all commands of one invocation.
type cli struct {
	configPath string
	asJSON     bool
	out        io.Writer

	cfg *config.Config
	log *zap.Logger
	ws  *workspace.Workspace
	now func() time.Time
}

// execute runs one invocation. The workspace is closed here rather than in a
// post-run hook, which cobra skips when a command fails.
func execute(ctx context.Context, out io.Writer, args []string) error {
	c := &cli{out: out, now: time.Now}
	root := c.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dayplan",
		Short: "Tasks, reminders and goals in your terminal",
		Long: `dayplan keeps track of tasks, reminders and goals.

Data is stored in the backend named in the config file (JSON files by default,
or memory, redis or postgres). Every value can be overridden with environment
variables such as DAYPLAN_STORAGE_BACKEND.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ~/.config/dayplan/config.yaml)")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		c.tasksCmd(),
		c.remindersCmd(),
		c.goalsCmd(),
		c.statsCmd(),
		c.loginCmd(),
		c.demoCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.profileCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log, err = logging.New(cfg.Log, os.Stderr)
	return err
}

// workspace opens the stores on first use and waits for the session.
func (c *cli) workspace(ctx context.Context) (*workspace.Workspace, error) {
	if c.ws != nil {
		return c.ws, nil
	}
	ws, err := workspace.Open(ctx, *c.cfg, c.log)
	if err != nil {
		return nil, err
	}
	if err := ws.Auth.Wait(ctx); err != nil {
		ws.Close()
		return nil, err
	}
	c.ws = ws
	return ws, nil
}

func (c *cli) close() error {
	var err error
	if c.ws != nil {
		err = c.ws.Close()
		c.ws = nil
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
	return err
}

// printJSON writes v as indented JSON when --json is set and reports
// whether it did.
func (c *cli) printJSON(v any) (bool, error) {
	if !c.asJSON {
		return false, nil
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
