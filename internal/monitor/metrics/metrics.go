package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal tracks probe attempts per chain
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguard_probes_total",
			Help: "Total number of probe cycles",
		},
		[]string{"chain"},
	)

	// ProbeFailuresTotal tracks probes that exhausted all endpoints
	ProbeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguard_probe_failures_total",
			Help: "Total number of failed probe cycles",
		},
		[]string{"chain"},
	)

	// BlockHeight tracks the latest observed block height (head slot for
	// consensus chains)
	BlockHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeguard_block_height",
			Help: "Latest observed block height",
		},
		[]string{"chain"},
	)

	// BlockLagSeconds tracks seconds since the latest block timestamp
	BlockLagSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeguard_block_lag_seconds",
			Help: "Seconds between now and the latest block timestamp",
		},
		[]string{"chain"},
	)

	// PeerCount tracks the node's connected peer count when known
	PeerCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeguard_peer_count",
			Help: "Connected peer count reported by the node",
		},
		[]string{"chain"},
	)

	// Verdict exposes the current liveness verdict, one series per verdict
	// with value 1 for the active one
	Verdict = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeguard_verdict",
			Help: "Current liveness verdict (1 on the active series)",
		},
		[]string{"chain", "verdict"},
	)

	// RestartsTotal tracks restart actions taken per chain
	RestartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguard_restarts_total",
			Help: "Total number of restart actions",
		},
		[]string{"chain"},
	)

	// RestartSuppressedTotal tracks stuck verdicts blocked by a safety
	// constraint
	RestartSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeguard_restart_suppressed_total",
			Help: "Total number of suppressed restarts",
		},
		[]string{"chain", "reason"},
	)

	// HoldoffSeconds tracks the remaining restart cooldown per chain
	HoldoffSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodeguard_holdoff_seconds",
			Help: "Seconds remaining on the restart cooldown",
		},
		[]string{"chain"},
	)
)

var verdicts = []string{"healthy", "syncing", "lagging", "stuck"}

// SetVerdict flips the verdict gauge so exactly one series per chain
// carries 1.
func SetVerdict(chain, active string) {
	for _, v := range verdicts {
		val := 0.0
		if v == active {
			val = 1.0
		}
		Verdict.WithLabelValues(chain, v).Set(val)
	}
}
