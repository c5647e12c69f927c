package domain

// DecisionKind is the outcome of a restart-controller evaluation.
type DecisionKind string

const (
	// DecisionAct: all safety conditions passed, a restart may proceed.
	DecisionAct DecisionKind = "act"
	// DecisionSuppressed: the verdict was Stuck but a safety constraint
	// blocked the restart.
	DecisionSuppressed DecisionKind = "suppressed"
	// DecisionSkip: the verdict did not call for a restart at all.
	DecisionSkip DecisionKind = "skip"
)

// SuppressReason explains a DecisionSuppressed outcome.
type SuppressReason string

const (
	SuppressCooldown SuppressReason = "cooldown_active"
	SuppressNoTarget SuppressReason = "no_restart_target"
)

// Decision is the restart controller's verdict for one cycle.
type Decision struct {
	Kind   DecisionKind
	Reason SuppressReason // set when Kind == DecisionSuppressed
	// HoldoffRemaining is the seconds left on the cooldown, clamped to 0.
	// Reported for observability on every decision.
	HoldoffRemaining uint64
}
