// Package evaluate classifies chain snapshots into liveness verdicts.
//
// The classification is pure: it looks only at the snapshots and the chain
// thresholds, never at the restart target. Whether a Stuck chain actually
// gets restarted is the restart controller's business.
package evaluate

import (
	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
)

// Evaluate classifies the current snapshot.
//
// Rules, in priority order:
//   - A syncing node is Syncing, unconditionally. Restarting it would throw
//     away sync progress.
//   - Lag within the threshold is Healthy. Block timestamps in the future
//     clamp to zero lag (clock skew is not an error).
//   - Over-threshold lag is Lagging until a second probe, taken at least
//     stuck_check_interval later, shows the same block height; only then is
//     the chain Stuck. A single slow probe never produces Stuck.
func Evaluate(
	current domain.ChainSnapshot,
	previous *domain.ChainSnapshot,
	cfg config.TargetConfig,
	now uint64,
) domain.Verdict {
	if current.IsSyncing {
		return domain.VerdictSyncing
	}

	if current.Lag(now) <= cfg.LagThreshold {
		return domain.VerdictHealthy
	}

	if previous != nil &&
		previous.BlockNumber == current.BlockNumber &&
		current.CapturedAt >= previous.CapturedAt+cfg.StuckCheckInterval {
		return domain.VerdictStuck
	}

	return domain.VerdictLagging
}
