package probe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vietddude/nodeguard/internal/core/domain"
	"github.com/vietddude/nodeguard/internal/infra/rpc"
)

// secondsPerSlot is the beacon chain slot duration.
const secondsPerSlot = 12

// BeaconProber probes a consensus node over the beacon REST API. The head
// slot stands in for block number; its timestamp derives from genesis time.
type BeaconProber struct {
	client      *rpc.Client
	genesisTime uint64
}

// NewBeaconProber creates a prober for a beacon API endpoint.
func NewBeaconProber(client *rpc.Client, genesisTime uint64) *BeaconProber {
	return &BeaconProber{client: client, genesisTime: genesisTime}
}

// Snapshot captures head slot, sync flag, peer count and finality
// checkpoints.
func (p *BeaconProber) Snapshot(ctx context.Context) (domain.ChainSnapshot, error) {
	var snap domain.ChainSnapshot

	var syncing struct {
		Data struct {
			IsSyncing bool `json:"is_syncing"`
		} `json:"data"`
	}
	if err := p.client.GetJSON(ctx, "/eth/v1/node/syncing", &syncing); err != nil {
		return snap, &domain.ProbeError{Method: "/eth/v1/node/syncing", Err: err}
	}

	var head struct {
		Data struct {
			Message struct {
				Slot string `json:"slot"`
			} `json:"message"`
		} `json:"data"`
	}
	if err := p.client.GetJSON(ctx, "/eth/v2/beacon/blocks/head", &head); err != nil {
		return snap, &domain.ProbeError{Method: "/eth/v2/beacon/blocks/head", Err: err}
	}
	slot, err := strconv.ParseUint(head.Data.Message.Slot, 10, 64)
	if err != nil {
		return snap, &domain.ProbeError{
			Method: "/eth/v2/beacon/blocks/head",
			Err:    fmt.Errorf("malformed slot %q", head.Data.Message.Slot),
		}
	}

	snap = domain.ChainSnapshot{
		BlockNumber:    slot,
		BlockTimestamp: p.genesisTime + slot*secondsPerSlot,
		IsSyncing:      syncing.Data.IsSyncing,
		CapturedAt:     uint64(time.Now().Unix()),
	}

	// Peer count and finality checkpoints are best-effort telemetry.
	var peers struct {
		Data struct {
			Connected string `json:"connected"`
		} `json:"data"`
	}
	if err := p.client.GetJSON(ctx, "/eth/v1/node/peer_count", &peers); err == nil {
		if n, perr := strconv.ParseUint(peers.Data.Connected, 10, 32); perr == nil {
			snap.PeerCount = uint32(n)
			snap.PeerCountKnown = true
		}
	}

	var finality struct {
		Data struct {
			Justified struct {
				Epoch string `json:"epoch"`
			} `json:"justified"`
			Finalized struct {
				Epoch string `json:"epoch"`
			} `json:"finalized"`
		} `json:"data"`
	}
	if err := p.client.GetJSON(ctx, "/eth/v1/beacon/states/head/finality_checkpoints", &finality); err == nil {
		justified, jerr := strconv.ParseUint(finality.Data.Justified.Epoch, 10, 64)
		finalized, ferr := strconv.ParseUint(finality.Data.Finalized.Epoch, 10, 64)
		if jerr == nil && ferr == nil {
			snap.FinalityKnown = true
			snap.JustifiedEpoch = justified
			snap.FinalizedEpoch = finalized
		}
	}

	return snap, nil
}

// Validate checks the node health endpoint: 200 is healthy, 206 means
// still syncing but reachable. Anything else fails startup validation.
func (p *BeaconProber) Validate(ctx context.Context) (string, error) {
	status, err := p.client.GetStatus(ctx, "/eth/v1/node/health")
	if err != nil {
		return "", &domain.ProbeError{Method: "/eth/v1/node/health", Err: err}
	}
	switch status {
	case 200:
		return "beacon", nil
	case 206:
		return "beacon (syncing)", nil
	default:
		return "", &domain.ProbeError{
			Method: "/eth/v1/node/health",
			Err:    fmt.Errorf("health returned http %d", status),
		}
	}
}
