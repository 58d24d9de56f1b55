package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"conductor/internal/config"
	"conductor/internal/coordinator"
	"conductor/internal/supervisor"
	"conductor/pkg/logging"
)

// App wires a configuration into a running coordinator: an exec
// supervisor for the declared workers, the coordinator itself, and a
// config watcher.
type App struct {
	cfg     config.Config
	path    string
	catalog *Catalog
	coord   *coordinator.Coordinator
	sup     *supervisor.Exec
}

// New builds the application from a validated config. path is the config
// file location, used for change watching; it may be empty.
func New(cfg config.Config, path string) (*App, error) {
	sup := supervisor.NewExec()
	sup.GracePeriod = cfg.Coordinator.GracePeriod

	coord, err := coordinator.New(coordinator.Options{
		Supervisor:        sup,
		StopDependents:    cfg.Coordinator.StopDependents,
		RestartDependents: cfg.Coordinator.RestartDependents,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		path:    path,
		catalog: NewCatalog(cfg),
		coord:   coord,
		sup:     sup,
	}, nil
}

// Coordinator exposes the running coordinator to callers such as the CLI.
func (a *App) Coordinator() *coordinator.Coordinator {
	return a.coord
}

// Catalog exposes the declared service catalog.
func (a *App) Catalog() *Catalog {
	return a.catalog
}

// Run starts every autoStart service in declaration order and then blocks
// until ctx is done, watching the config file for changes. A changed
// config is only reported; the running graph is not reconciled.
func (a *App) Run(ctx context.Context) error {
	for _, svc := range a.cfg.Services {
		if !svc.AutoStart {
			continue
		}
		s, err := a.catalog.Spec(svc.ID)
		if err != nil {
			return err
		}
		if _, err := a.coord.Start(ctx, s); err != nil {
			return fmt.Errorf("failed to start %s: %w", svc.ID, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.path != "" {
		g.Go(func() error {
			err := config.Watch(gctx, a.path, func() {
				if _, err := config.Load(a.path); err != nil {
					logging.Error("App", err, "Changed configuration is invalid, keeping current one")
					return
				}
				logging.Info("App", "Configuration changed; restart conductor to apply")
			})
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

// Shutdown stops every running service by repeatedly stopping whatever is
// currently stoppable until the registry drains, then closes the
// coordinator. It returns an error when ctx expires first.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.coord.Close()

	for {
		specs := a.coord.Specs(ctx)
		if len(specs) == 0 {
			return nil
		}
		stoppedAny := false
		for _, s := range specs {
			ok, err := a.coord.CanStop(ctx, s)
			if err != nil || !ok {
				continue
			}
			if err := a.coord.Stop(ctx, s); err == nil {
				stoppedAny = true
			}
		}
		if err := a.waitDrain(ctx, len(specs), stoppedAny); err != nil {
			return err
		}
	}
}

// waitDrain polls until the registry shrinks below prev or ctx expires.
func (a *App) waitDrain(ctx context.Context, prev int, stoppedAny bool) error {
	if !stoppedAny {
		// Nothing was stoppable; either the registry is empty or a
		// termination event is still in flight.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil
		}
	}
	for {
		if len(a.coord.Specs(ctx)) < prev {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}
