// Package workspace opens the configured backend and builds the stores on
// top of it.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/td0m/dayplan/internal/config"
	"github.com/td0m/dayplan/pkg/auth"
	"github.com/td0m/dayplan/pkg/goal"
	"github.com/td0m/dayplan/pkg/persist"
	"github.com/td0m/dayplan/pkg/task"
	"go.uber.org/zap"
)

type Workspace struct {
	Store *persist.Store
	Tasks *task.Store
	Goals *goal.Store
	Auth  *auth.Manager

	// Bridge is nil unless NATS is configured.
	Bridge *goal.Bridge

	log     *zap.Logger
	stop    context.CancelFunc
	closers []func() error
}

// Open connects to the configured backend. The session restore is started
// but not waited for; see auth.Manager.Ready.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Workspace, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Workspace{log: log}
	ok := false
	defer func() {
		if !ok {
			w.Close()
		}
	}()

	backend, err := w.openBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	w.Store = persist.New(backend,
		persist.WithLogger(log.Named("persist")),
		persist.WithNamespace(cfg.Storage.Namespace),
		persist.WithTimeout(cfg.Storage.Timeout),
	)

	bg, stop := context.WithCancel(context.Background())
	w.stop = stop
	if files, isFiles := backend.(*persist.Files); isFiles && cfg.Storage.Watch {
		if err := files.Watch(bg, w.Store, cfg.Storage.WatchSettle); err != nil {
			return nil, err
		}
		log.Debug("watching data directory", zap.String("dir", files.Dir()))
	}

	w.Tasks = task.NewStore(w.Store, task.WithLogger(log.Named("tasks")))
	w.Goals = goal.NewStore(w.Store, goal.WithLogger(log.Named("goals")))
	w.Auth = auth.NewManager(w.Store, auth.WithLogger(log.Named("auth")))
	w.Auth.Start()

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("dayplan"))
		if err != nil {
			return nil, fmt.Errorf("connecting to nats: %w", err)
		}
		w.closers = append(w.closers, func() error {
			return nc.Drain()
		})
		w.Bridge = goal.NewBridge(nc, cfg.NATS.GoalsSubject, log.Named("nats"))
		detach := w.Bridge.Attach(w.Goals)
		w.closers = append(w.closers, func() error {
			detach()
			return nil
		})
	}

	ok = true
	return w, nil
}

func (w *Workspace) openBackend(ctx context.Context, cfg config.Storage) (persist.Backend, error) {
	w.log.Debug("opening storage", zap.String("backend", cfg.Backend))
	switch cfg.Backend {
	case "memory":
		return persist.NewMemory(), nil
	case "file":
		return persist.InFiles(cfg.Dir), nil
	case "redis":
		r, err := persist.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, r.Close)
		return r, nil
	case "postgres":
		pg, err := persist.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// Close stops the watcher and releases connections, last opened first.
func (w *Workspace) Close() error {
	if w.stop != nil {
		w.stop()
	}
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}
