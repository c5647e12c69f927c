package domain

// Verdict classifies the liveness of a monitored endpoint.
type Verdict string

const (
	// VerdictHealthy: head block is within the lag threshold.
	VerdictHealthy Verdict = "healthy"
	// VerdictSyncing: the node reports an active sync. Always wins over
	// Lagging/Stuck; a syncing node is never a restart candidate.
	VerdictSyncing Verdict = "syncing"
	// VerdictLagging: head block is stale but height progress is not yet
	// ruled out. The caller must re-probe before concluding Stuck.
	VerdictLagging Verdict = "lagging"
	// VerdictStuck: Lagging confirmed by a second probe showing no height
	// progress after the stuck-check interval.
	VerdictStuck Verdict = "stuck"
)
