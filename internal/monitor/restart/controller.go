// Package restart decides whether a stuck chain may be restarted and
// carries out the restart when it may.
package restart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
)

// externalRestartSlack absorbs clock jitter between the monitor host and
// the target runtime when comparing observed start times.
const externalRestartSlack = 10

// StartTimes exposes the live start timestamp of a restart target.
type StartTimes interface {
	StartTime(ctx context.Context, target domain.RestartTarget) (uint64, bool)
}

// Notifier delivers operator notifications, best-effort.
type Notifier interface {
	Notify(ctx context.Context, class, text string)
}

// Controller applies the safety constraints around restarts. One instance
// per chain; the RecoveryState it mutates is owned by that chain's worker.
type Controller struct {
	cfg      config.TargetConfig
	times    StartTimes
	notifier Notifier
	log      *slog.Logger
}

// NewController creates a restart controller for one chain.
func NewController(cfg config.TargetConfig, times StartTimes, notifier Notifier, log *slog.Logger) *Controller {
	return &Controller{cfg: cfg, times: times, notifier: notifier, log: log}
}

// Decide maps a verdict onto a restart decision.
//
// Anything but Stuck is a Skip. A Stuck chain without a configured target
// is Suppressed. Otherwise the cooldown gates the restart: a chain is
// eligible once the elapsed time since the last restart reaches
// min_restart_interval exactly; the comparison is strictly less-than.
//
// On Act the last restart time moves to now before the action runs, so a
// failed or slow restart still consumes the cooldown.
func (c *Controller) Decide(ctx context.Context, verdict domain.Verdict, state *domain.RecoveryState, now uint64) domain.Decision {
	c.reconcile(ctx, state)

	holdoff := c.holdoffRemaining(state, now)

	if verdict != domain.VerdictStuck {
		return domain.Decision{Kind: domain.DecisionSkip, HoldoffRemaining: holdoff}
	}

	if !c.cfg.Target.Configured() {
		return domain.Decision{
			Kind:             domain.DecisionSuppressed,
			Reason:           domain.SuppressNoTarget,
			HoldoffRemaining: holdoff,
		}
	}

	if holdoff > 0 {
		return domain.Decision{
			Kind:             domain.DecisionSuppressed,
			Reason:           domain.SuppressCooldown,
			HoldoffRemaining: holdoff,
		}
	}

	state.LastRestartTime = now
	return domain.Decision{Kind: domain.DecisionAct}
}

// reconcile adopts restarts performed outside the monitor. When the live
// target start time is newer than the stored one beyond the slack, someone
// (or something) else restarted the target and the cooldown restarts from
// that moment.
func (c *Controller) reconcile(ctx context.Context, state *domain.RecoveryState) {
	if !c.cfg.Target.Observable() || c.times == nil {
		return
	}
	observed, ok := c.times.StartTime(ctx, c.cfg.Target)
	if !ok || observed <= state.LastRestartTime+externalRestartSlack {
		return
	}

	c.log.Info("External restart detected, adopting start time",
		"chain", c.cfg.Name,
		"target", c.cfg.Target.Name,
		"stored", state.LastRestartTime,
		"observed", observed)
	state.LastRestartTime = observed

	if c.notifier != nil {
		c.notifier.Notify(ctx, "external",
			fmt.Sprintf("<b>%s</b>: external restart of <code>%s</code> detected, cooldown reset",
				c.cfg.Name, c.cfg.Target.Name))
	}
}

func (c *Controller) holdoffRemaining(state *domain.RecoveryState, now uint64) uint64 {
	if state.LastRestartTime == 0 || now < state.LastRestartTime {
		return 0
	}
	elapsed := now - state.LastRestartTime
	if elapsed < c.cfg.MinRestartInterval {
		return c.cfg.MinRestartInterval - elapsed
	}
	return 0
}
