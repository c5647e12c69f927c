package domain

// RecoveryState is the per-chain mutable restart bookkeeping. One instance
// exists per monitored chain and is owned exclusively by its worker; it is
// never persisted and is rebuilt from the live target's clock on startup.
type RecoveryState struct {
	// LastRestartTime is the unix second of the most recent restart,
	// 0 meaning never. Monotonically non-decreasing except when replaced
	// by a newer observed start time (external restart reconciliation).
	LastRestartTime uint64
	// LastKnownBlock is the block height seen by the previous probe.
	LastKnownBlock uint64
	// PendingStuckSince is the unix second of the first Lagging probe
	// awaiting confirmation, 0 when no confirmation is pending.
	PendingStuckSince uint64
}
