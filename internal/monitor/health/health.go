// Package health aggregates per-chain liveness into HTTP status reporting.
package health

import (
	"sync"
	"time"

	"github.com/vietddude/nodeguard/internal/core/domain"
)

// SystemStatus represents the overall health state of the system or a chain.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ChainHealth is the externally visible state of one monitored chain.
type ChainHealth struct {
	Chain           string         `json:"chain"`
	Status          SystemStatus   `json:"status"`
	Verdict         domain.Verdict `json:"verdict"`
	BlockHeight     uint64         `json:"block_height"`
	BlockLag        uint64         `json:"block_lag"`
	PeerCount       uint32         `json:"peer_count,omitempty"`
	PeersDegraded   bool           `json:"peers_degraded,omitempty"`
	HoldoffSeconds  uint64         `json:"holdoff_seconds"`
	LastProbeError  string         `json:"last_probe_error,omitempty"`
	LastProbeTime   time.Time      `json:"last_probe_time"`
	LastRestartTime uint64         `json:"last_restart_time,omitempty"`
	Restarts        uint64         `json:"restarts"`
}

// Registry holds the latest ChainHealth per chain. Workers write after
// every cycle, the HTTP server reads on demand.
type Registry struct {
	mu     sync.RWMutex
	chains map[string]ChainHealth
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[string]ChainHealth)}
}

// Update replaces the stored state for one chain.
func (r *Registry) Update(h ChainHealth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[h.Chain] = h
}

// Snapshot returns a copy of all chain states.
func (r *Registry) Snapshot() map[string]ChainHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ChainHealth, len(r.chains))
	for k, v := range r.chains {
		out[k] = v
	}
	return out
}

// Classify maps a verdict and probe outcome onto a health status. A probe
// failure or a Stuck verdict is critical; Lagging, Syncing or a degraded
// peer count is degraded.
func Classify(verdict domain.Verdict, probeFailed, peersDegraded bool) SystemStatus {
	switch {
	case probeFailed, verdict == domain.VerdictStuck:
		return StatusCritical
	case verdict == domain.VerdictLagging, verdict == domain.VerdictSyncing, peersDegraded:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}
