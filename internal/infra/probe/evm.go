package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/nodeguard/internal/core/domain"
	"github.com/vietddude/nodeguard/internal/infra/rpc"
)

// EVMProber probes an execution node over JSON-RPC.
type EVMProber struct {
	client *rpc.Client
}

// NewEVMProber creates a prober for an EVM execution endpoint.
func NewEVMProber(client *rpc.Client) *EVMProber {
	return &EVMProber{client: client}
}

// Snapshot captures the head block, sync flag and peer count.
func (p *EVMProber) Snapshot(ctx context.Context) (domain.ChainSnapshot, error) {
	var snap domain.ChainSnapshot

	syncing, err := p.isSyncing(ctx)
	if err != nil {
		return snap, &domain.ProbeError{Method: "eth_syncing", Err: err}
	}

	result, err := p.client.Call(ctx, "eth_getBlockByNumber", []any{"latest", false})
	if err != nil {
		return snap, &domain.ProbeError{Method: "eth_getBlockByNumber", Err: err}
	}
	block, ok := result.(map[string]any)
	if !ok {
		return snap, &domain.ProbeError{
			Method: "eth_getBlockByNumber",
			Err:    fmt.Errorf("malformed block response"),
		}
	}

	number, err := parseHexUint64(getString(block["number"]))
	if err != nil {
		return snap, &domain.ProbeError{Method: "eth_getBlockByNumber", Err: err}
	}
	timestamp, err := parseHexUint64(getString(block["timestamp"]))
	if err != nil {
		return snap, &domain.ProbeError{Method: "eth_getBlockByNumber", Err: err}
	}

	snap = domain.ChainSnapshot{
		BlockNumber:    number,
		BlockTimestamp: timestamp,
		IsSyncing:      syncing,
		CapturedAt:     uint64(time.Now().Unix()),
	}

	// Peer count is best-effort: not every endpoint exposes net_peerCount.
	if peers, err := p.peerCount(ctx); err == nil {
		snap.PeerCount = peers
		snap.PeerCountKnown = true
	}

	return snap, nil
}

// Validate checks the endpoint answers eth_blockNumber and reports the
// chain id for log prefixes.
func (p *EVMProber) Validate(ctx context.Context) (string, error) {
	result, err := p.client.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return "", &domain.ProbeError{Method: "eth_blockNumber", Err: err}
	}
	if _, err := parseHexUint64(getString(result)); err != nil {
		return "", &domain.ProbeError{Method: "eth_blockNumber", Err: err}
	}

	// Chain id enriches logs only; its absence is not fatal.
	result, err = p.client.Call(ctx, "eth_chainId", nil)
	if err == nil {
		if id, perr := parseHexUint64(getString(result)); perr == nil {
			return fmt.Sprintf("chain-id %d", id), nil
		}
	}
	return "chain-id unknown", nil
}

// isSyncing interprets eth_syncing: false when synced, a progress object
// while syncing.
func (p *EVMProber) isSyncing(ctx context.Context) (bool, error) {
	result, err := p.client.Call(ctx, "eth_syncing", nil)
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		// Any non-false result is a sync progress object
		return true, nil
	}
}

func (p *EVMProber) peerCount(ctx context.Context) (uint32, error) {
	result, err := p.client.Call(ctx, "net_peerCount", nil)
	if err != nil {
		return 0, err
	}
	n, err := parseHexUint64(getString(result))
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
