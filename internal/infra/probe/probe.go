// Package probe turns raw endpoint telemetry into ChainSnapshots. One
// prober exists per monitored chain; execution nodes speak EVM JSON-RPC,
// consensus nodes speak the beacon REST API.
package probe

import (
	"context"

	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
	"github.com/vietddude/nodeguard/internal/infra/rpc"
)

// Prober captures a normalized liveness snapshot of one endpoint.
type Prober interface {
	// Snapshot probes the endpoint once. Transport retries and endpoint
	// fallback happen inside; a returned error means the cycle's probe is
	// missed entirely.
	Snapshot(ctx context.Context) (domain.ChainSnapshot, error)

	// Validate checks the endpoint is reachable and well-formed at
	// startup, returning a short identity string for log prefixes.
	Validate(ctx context.Context) (string, error)
}

// New builds the prober matching the chain kind.
func New(cfg config.TargetConfig) Prober {
	client := rpc.NewClient(cfg.RPCURLs, cfg.RequestTimeout, rpc.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		Backoff:     cfg.RetryBackoff,
	})

	if cfg.Kind == domain.KindConsensus {
		return NewBeaconProber(client, cfg.GenesisTime)
	}
	return NewEVMProber(client)
}
