package domain

// TargetKind discriminates the RestartTarget variant.
type TargetKind string

const (
	TargetNone      TargetKind = "none"
	TargetContainer TargetKind = "container"
	TargetService   TargetKind = "service"
	TargetCommand   TargetKind = "command"
)

// RestartTarget names what gets restarted when a chain is stuck.
// Container and Service are mutually exclusive per chain; the config
// loader enforces that.
type RestartTarget struct {
	Kind TargetKind
	// Name is the container/service name, or the shell command line for
	// TargetCommand.
	Name string
}

// Configured reports whether a restart action exists for this target.
func (t RestartTarget) Configured() bool {
	return t.Kind != "" && t.Kind != TargetNone
}

// Observable reports whether the target exposes a live start timestamp.
// Shell commands have no process identity to inspect.
func (t RestartTarget) Observable() bool {
	return t.Kind == TargetContainer || t.Kind == TargetService
}
