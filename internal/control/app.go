// Package control wires the monitor together and manages its lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
	"github.com/vietddude/nodeguard/internal/infra/notify"
	"github.com/vietddude/nodeguard/internal/infra/probe"
	"github.com/vietddude/nodeguard/internal/infra/proc"
	"github.com/vietddude/nodeguard/internal/monitor/health"
	"github.com/vietddude/nodeguard/internal/monitor/restart"
	"github.com/vietddude/nodeguard/internal/monitor/worker"
)

// App is the assembled monitor: one worker per chain plus the shared
// health server and notifier.
type App struct {
	workers      []*worker.Worker
	targets      []config.TargetConfig
	processes    *proc.Controller
	healthServer *health.Server
	notifier     notify.Notifier
	log          *slog.Logger

	wg sync.WaitGroup
}

// NewApp builds all per-chain components from the loaded config. The
// --chain filter, when non-empty, limits monitoring to the named chains.
func NewApp(cfg *config.AppConfig, only []string, log *slog.Logger) (*App, error) {
	notifier := notify.New(cfg.Notify, log)
	registry := health.NewRegistry()
	processes := proc.NewController(log)

	filter := make(map[string]bool, len(only))
	for _, name := range only {
		filter[name] = true
	}

	var workers []*worker.Worker
	var targets []config.TargetConfig
	for _, chainCfg := range cfg.Chains {
		if len(filter) > 0 && !filter[chainCfg.Name] {
			continue
		}
		merged := cfg.Merged(chainCfg)
		targets = append(targets, merged)

		prober := probe.New(merged)
		controller := restart.NewController(merged, processes, notifier, log)
		executor := restart.NewExecutor(merged, processes, log)
		workers = append(workers,
			worker.New(merged, prober, controller, executor, processes, notifier, registry, log))
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("no chains to monitor")
	}

	return &App{
		workers:      workers,
		targets:      targets,
		processes:    processes,
		healthServer: health.NewServer(registry, cfg.Server.Port),
		notifier:     notifier,
		log:          log,
	}, nil
}

// validateTargets confirms every configured container and service exists
// before monitoring starts. Shell-command targets cannot be checked ahead
// of time.
func (a *App) validateTargets(ctx context.Context) error {
	for _, t := range a.targets {
		var (
			exists bool
			err    error
		)
		switch t.Target.Kind {
		case domain.TargetContainer:
			exists, err = a.processes.ContainerExists(ctx, t.Target.Name)
		case domain.TargetService:
			exists, err = a.processes.ServiceExists(ctx, t.Target.Name)
		default:
			continue
		}
		if err != nil {
			return fmt.Errorf("chain %s: checking target %s: %w", t.Name, t.Target.Name, err)
		}
		if !exists {
			return fmt.Errorf("chain %s: %w: %s %s",
				t.Name, domain.ErrTargetNotFound, t.Target.Kind, t.Target.Name)
		}
	}
	return nil
}

// Start validates every chain endpoint, sends the startup summary and
// launches the workers. A failed validation aborts startup.
func (a *App) Start(ctx context.Context) error {
	if err := a.validateTargets(ctx); err != nil {
		a.notifier.Notify(ctx, notify.ClassFailure,
			fmt.Sprintf("startup validation failed: <code>%v</code>", err))
		return err
	}

	var lines []string
	for _, w := range a.workers {
		identity, err := w.Validate(ctx)
		if err != nil {
			a.notifier.Notify(ctx, notify.ClassFailure,
				fmt.Sprintf("startup validation failed: <code>%v</code>", err))
			return fmt.Errorf("startup validation: %w", err)
		}
		lines = append(lines, w.Summary(identity))
	}

	a.notifier.Notify(ctx, notify.ClassStartup,
		"monitor started\n\n"+strings.Join(lines, "\n\n"))

	go func() {
		if err := a.healthServer.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	for _, w := range a.workers {
		a.wg.Add(1)
		go func(w *worker.Worker) {
			defer a.wg.Done()
			w.Run(ctx)
		}(w)
	}
	return nil
}

// Stop waits for the workers to finish their in-flight cycles and shuts
// the health server down. The wait is bounded by the shutdown context so a
// hung restart call cannot block termination.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping monitor...")

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.log.Warn("Shutdown deadline reached, abandoning in-flight workers")
		return ctx.Err()
	}
	return a.healthServer.Stop(ctx)
}
