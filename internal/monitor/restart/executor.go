package restart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
)

// Processes is the slice of target control the executor needs.
type Processes interface {
	ContainerExists(ctx context.Context, name string) (bool, error)
	RestartContainer(ctx context.Context, name string) error
	ServiceExists(ctx context.Context, name string) (bool, error)
	RestartService(ctx context.Context, name string) error
	RunCommand(ctx context.Context, cmdline string) error
	CaptureLogs(ctx context.Context, cfg config.TargetConfig, actionID string)
}

// Executor performs the restart action for one chain.
type Executor struct {
	cfg  config.TargetConfig
	proc Processes
	log  *slog.Logger
}

// NewExecutor creates an executor for one chain.
func NewExecutor(cfg config.TargetConfig, proc Processes, log *slog.Logger) *Executor {
	return &Executor{cfg: cfg, proc: proc, log: log}
}

// Execute runs one restart attempt and returns its action id.
//
// The attempt checks the target exists, captures its logs, then restarts
// it and any secondary targets. In dry-run mode everything up to and
// including the capture runs; the restarts themselves are logged but not
// performed, and the attempt reports success.
//
// A missing target is fatal for the attempt. A failed restart is reported
// to the caller but never retried within the cycle; the cooldown was
// already consumed when the decision was made.
func (e *Executor) Execute(ctx context.Context) (string, error) {
	actionID := uuid.NewString()[:8]
	target := e.cfg.Target

	switch target.Kind {
	case domain.TargetContainer:
		exists, err := e.proc.ContainerExists(ctx, target.Name)
		if err != nil {
			return actionID, fmt.Errorf("%w: container %s: %v", domain.ErrTargetNotFound, target.Name, err)
		}
		if !exists {
			return actionID, fmt.Errorf("%w: container %s", domain.ErrTargetNotFound, target.Name)
		}
	case domain.TargetService:
		exists, err := e.proc.ServiceExists(ctx, target.Name)
		if err != nil {
			return actionID, fmt.Errorf("%w: service %s: %v", domain.ErrTargetNotFound, target.Name, err)
		}
		if !exists {
			return actionID, fmt.Errorf("%w: service %s", domain.ErrTargetNotFound, target.Name)
		}
	}

	e.proc.CaptureLogs(ctx, e.cfg, actionID)

	if e.cfg.DryRun {
		e.log.Warn("DRY RUN: would restart target",
			"chain", e.cfg.Name, "action", actionID,
			"kind", target.Kind, "target", target.Name)
		e.restartSecondaries(ctx, actionID, true)
		return actionID, nil
	}

	e.log.Warn("Restarting target",
		"chain", e.cfg.Name, "action", actionID,
		"kind", target.Kind, "target", target.Name)

	var err error
	switch target.Kind {
	case domain.TargetContainer:
		err = e.proc.RestartContainer(ctx, target.Name)
	case domain.TargetService:
		err = e.proc.RestartService(ctx, target.Name)
	case domain.TargetCommand:
		err = e.proc.RunCommand(ctx, target.Name)
	}
	if err != nil {
		return actionID, err
	}

	e.restartSecondaries(ctx, actionID, false)
	return actionID, nil
}

// restartSecondaries restarts the chain's secondary containers and
// services. They piggyback on the primary's cooldown and their failures
// never fail the attempt.
func (e *Executor) restartSecondaries(ctx context.Context, actionID string, dryRun bool) {
	for _, name := range e.cfg.SecondaryContainers {
		if dryRun {
			e.log.Warn("DRY RUN: would restart secondary container",
				"chain", e.cfg.Name, "action", actionID, "container", name)
			continue
		}
		if err := e.proc.RestartContainer(ctx, name); err != nil {
			e.log.Warn("Secondary container restart failed",
				"chain", e.cfg.Name, "action", actionID, "container", name, "error", err)
		}
	}
	for _, name := range e.cfg.SecondaryServices {
		if dryRun {
			e.log.Warn("DRY RUN: would restart secondary service",
				"chain", e.cfg.Name, "action", actionID, "service", name)
			continue
		}
		if err := e.proc.RestartService(ctx, name); err != nil {
			e.log.Warn("Secondary service restart failed",
				"chain", e.cfg.Name, "action", actionID, "service", name, "error", err)
		}
	}
}
