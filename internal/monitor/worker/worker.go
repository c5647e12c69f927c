// Package worker runs the monitor loop for a single chain: probe,
// evaluate, decide, act, report, sleep.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
	"github.com/vietddude/nodeguard/internal/infra/notify"
	"github.com/vietddude/nodeguard/internal/infra/probe"
	"github.com/vietddude/nodeguard/internal/monitor/evaluate"
	"github.com/vietddude/nodeguard/internal/monitor/health"
	"github.com/vietddude/nodeguard/internal/monitor/metrics"
	"github.com/vietddude/nodeguard/internal/monitor/restart"
)

// Worker owns everything mutable about one monitored chain. All state is
// confined to the worker's goroutine; cycles are strictly sequential.
type Worker struct {
	cfg        config.TargetConfig
	prober     probe.Prober
	controller *restart.Controller
	executor   *restart.Executor
	times      restart.StartTimes
	notifier   notify.Notifier
	registry   *health.Registry
	log        *slog.Logger

	state     domain.RecoveryState
	reference *domain.ChainSnapshot
	restarts  uint64
}

// New creates a worker for one chain.
func New(
	cfg config.TargetConfig,
	prober probe.Prober,
	controller *restart.Controller,
	executor *restart.Executor,
	times restart.StartTimes,
	notifier notify.Notifier,
	registry *health.Registry,
	log *slog.Logger,
) *Worker {
	return &Worker{
		cfg:        cfg,
		prober:     prober,
		controller: controller,
		executor:   executor,
		times:      times,
		notifier:   notifier,
		registry:   registry,
		log:        log,
	}
}

// Validate checks the chain's endpoint answers before monitoring starts
// and returns an identity string for the startup summary.
func (w *Worker) Validate(ctx context.Context) (string, error) {
	return w.prober.Validate(ctx)
}

// Summary describes the worker's configuration for the startup
// notification.
func (w *Worker) Summary(identity string) string {
	target := "none"
	if w.cfg.Target.Configured() {
		target = fmt.Sprintf("%s %s", w.cfg.Target.Kind, w.cfg.Target.Name)
	}
	text := fmt.Sprintf(
		"<b>%s</b> (%s)\nrpc: %s\ninterval %s, lag threshold %ds\ntarget: %s, cooldown %ds",
		w.cfg.Name, identity, w.cfg.RPCURLs[0],
		w.cfg.MonitorInterval, w.cfg.LagThreshold,
		target, w.cfg.MinRestartInterval)
	if holdoff := w.holdoffAt(uint64(time.Now().Unix())); holdoff > 0 {
		text += fmt.Sprintf("\nstartup holdoff: %ds remaining", holdoff)
	}
	if w.cfg.DryRun {
		text += "\n⚠️ DRY RUN: no restarts will be performed"
	}
	return text
}

// Run executes monitor cycles until the context is cancelled. The
// in-flight cycle always finishes; cancellation is only observed between
// cycles.
func (w *Worker) Run(ctx context.Context) {
	w.seed(ctx)

	ticker := time.NewTicker(w.cfg.MonitorInterval)
	defer ticker.Stop()

	w.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker stopped", "chain", w.cfg.Name)
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// seed rebuilds the restart clock from the live target so a monitor
// restart never forgets a recent node restart.
func (w *Worker) seed(ctx context.Context) {
	if !w.cfg.Target.Observable() || w.times == nil {
		return
	}
	started, ok := w.times.StartTime(ctx, w.cfg.Target)
	if !ok {
		w.log.Warn("Target start time unavailable, cooldown starts empty",
			"chain", w.cfg.Name, "target", w.cfg.Target.Name)
		return
	}
	w.state.LastRestartTime = started
	if holdoff := w.holdoffAt(uint64(time.Now().Unix())); holdoff > 0 {
		w.log.Info("Startup holdoff active",
			"chain", w.cfg.Name, "target", w.cfg.Target.Name, "holdoff", holdoff)
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	now := uint64(time.Now().Unix())
	metrics.ProbesTotal.WithLabelValues(w.cfg.Name).Inc()

	snap, err := w.prober.Snapshot(ctx)
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues(w.cfg.Name).Inc()
		w.log.Error("Probe failed", "chain", w.cfg.Name, "error", err)
		w.registry.Update(health.ChainHealth{
			Chain:          w.cfg.Name,
			Status:         health.StatusCritical,
			LastProbeError: err.Error(),
			LastProbeTime:  time.Now(),
			HoldoffSeconds: w.holdoffAt(now),
			Restarts:       w.restarts,
		})
		return
	}

	lag := snap.Lag(now)
	peersDegraded := snap.PeerCountKnown && snap.PeerCount < w.cfg.MinPeers
	if peersDegraded {
		w.log.Warn("Peer count below minimum",
			"chain", w.cfg.Name, "peers", snap.PeerCount, "min", w.cfg.MinPeers)
	}

	verdict := evaluate.Evaluate(snap, w.reference, w.cfg, now)
	w.advanceReference(snap, verdict)
	w.state.LastKnownBlock = snap.BlockNumber

	w.log.Debug("Probe cycle",
		"chain", w.cfg.Name, "block", snap.BlockNumber,
		"lag", lag, "verdict", verdict)

	decision := w.controller.Decide(ctx, verdict, &w.state, now)
	w.act(ctx, verdict, decision)

	metrics.BlockHeight.WithLabelValues(w.cfg.Name).Set(float64(snap.BlockNumber))
	metrics.BlockLagSeconds.WithLabelValues(w.cfg.Name).Set(float64(lag))
	metrics.SetVerdict(w.cfg.Name, string(verdict))
	metrics.HoldoffSeconds.WithLabelValues(w.cfg.Name).Set(float64(decision.HoldoffRemaining))
	if snap.PeerCountKnown {
		metrics.PeerCount.WithLabelValues(w.cfg.Name).Set(float64(snap.PeerCount))
	}

	w.registry.Update(health.ChainHealth{
		Chain:           w.cfg.Name,
		Status:          health.Classify(verdict, false, peersDegraded),
		Verdict:         verdict,
		BlockHeight:     snap.BlockNumber,
		BlockLag:        lag,
		PeerCount:       snap.PeerCount,
		PeersDegraded:   peersDegraded,
		HoldoffSeconds:  decision.HoldoffRemaining,
		LastProbeTime:   time.Now(),
		LastRestartTime: w.state.LastRestartTime,
		Restarts:        w.restarts,
	})
}

// advanceReference maintains the confirmation reference for stuck
// detection. The reference is the first over-threshold probe at the
// current height; it only moves when the chain progresses or recovers.
func (w *Worker) advanceReference(snap domain.ChainSnapshot, verdict domain.Verdict) {
	switch verdict {
	case domain.VerdictHealthy, domain.VerdictSyncing:
		w.reference = nil
		w.state.PendingStuckSince = 0
	default:
		if w.reference == nil || w.reference.BlockNumber != snap.BlockNumber {
			ref := snap
			w.reference = &ref
			w.state.PendingStuckSince = snap.CapturedAt
		}
	}
}

func (w *Worker) act(ctx context.Context, verdict domain.Verdict, decision domain.Decision) {
	switch decision.Kind {
	case domain.DecisionAct:
		actionID, err := w.executor.Execute(ctx)
		if err != nil {
			w.log.Error("Restart failed",
				"chain", w.cfg.Name, "action", actionID, "error", err)
			w.notifier.Notify(ctx, notify.ClassFailure,
				fmt.Sprintf("<b>%s</b>: restart failed (action %s)\n<code>%v</code>",
					w.cfg.Name, actionID, err))
			return
		}
		w.restarts++
		metrics.RestartsTotal.WithLabelValues(w.cfg.Name).Inc()
		verb := "restarted"
		if w.cfg.DryRun {
			verb = "would restart (dry run)"
		}
		w.notifier.Notify(ctx, notify.ClassRestart,
			fmt.Sprintf("<b>%s</b>: stuck at block %d, %s <code>%s</code> (action %s)",
				w.cfg.Name, w.state.LastKnownBlock, verb, w.cfg.Target.Name, actionID))

	case domain.DecisionSuppressed:
		metrics.RestartSuppressedTotal.
			WithLabelValues(w.cfg.Name, string(decision.Reason)).Inc()
		w.log.Warn("Restart suppressed",
			"chain", w.cfg.Name, "reason", decision.Reason,
			"holdoff", decision.HoldoffRemaining)
		if decision.Reason == domain.SuppressCooldown {
			w.notifier.Notify(ctx, notify.ClassCooldown,
				fmt.Sprintf("<b>%s</b>: stuck but inside cooldown, %ds remaining",
					w.cfg.Name, decision.HoldoffRemaining))
		}

	case domain.DecisionSkip:
		if verdict == domain.VerdictSyncing {
			w.log.Info("Node syncing, restart not considered", "chain", w.cfg.Name)
		}
	}
}

func (w *Worker) holdoffAt(now uint64) uint64 {
	if w.state.LastRestartTime == 0 || now < w.state.LastRestartTime {
		return 0
	}
	elapsed := now - w.state.LastRestartTime
	if elapsed < w.cfg.MinRestartInterval {
		return w.cfg.MinRestartInterval - elapsed
	}
	return 0
}
