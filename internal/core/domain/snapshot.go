package domain

// ChainKind identifies which API family a monitored endpoint speaks.
type ChainKind string

const (
	KindExecution ChainKind = "execution" // EVM JSON-RPC
	KindConsensus ChainKind = "consensus" // beacon REST API
)

// ChainSnapshot is one normalized probe result. Snapshots are immutable
// after creation; a new probe produces a new snapshot.
type ChainSnapshot struct {
	BlockNumber    uint64
	BlockTimestamp uint64 // unix seconds from the block header (or slot time)
	IsSyncing      bool
	PeerCount      uint32
	PeerCountKnown bool // false when the endpoint does not expose peer count
	CapturedAt     uint64 // unix seconds at probe time

	// Finality checkpoints, consensus endpoints only.
	FinalityKnown  bool
	JustifiedEpoch uint64
	FinalizedEpoch uint64
}

// Lag returns wall-clock seconds between now and the block's embedded
// timestamp. A timestamp in the future (clock skew) clamps to 0.
func (s ChainSnapshot) Lag(now uint64) uint64 {
	if s.BlockTimestamp >= now {
		return 0
	}
	return now - s.BlockTimestamp
}
