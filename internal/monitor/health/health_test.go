package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/vietddude/nodeguard/internal/core/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		verdict       domain.Verdict
		probeFailed   bool
		peersDegraded bool
		want          SystemStatus
	}{
		{domain.VerdictHealthy, false, false, StatusHealthy},
		{domain.VerdictHealthy, false, true, StatusDegraded},
		{domain.VerdictSyncing, false, false, StatusDegraded},
		{domain.VerdictLagging, false, false, StatusDegraded},
		{domain.VerdictStuck, false, false, StatusCritical},
		{domain.VerdictHealthy, true, false, StatusCritical},
	}
	for _, c := range cases {
		got := Classify(c.verdict, c.probeFailed, c.peersDegraded)
		if got != c.want {
			t.Errorf("Classify(%s, failed=%v, peers=%v) = %s, want %s",
				c.verdict, c.probeFailed, c.peersDegraded, got, c.want)
		}
	}
}

func TestHandleHealth_WorstCaseWins(t *testing.T) {
	reg := NewRegistry()
	reg.Update(ChainHealth{Chain: "a", Status: StatusHealthy, Verdict: domain.VerdictHealthy})
	reg.Update(ChainHealth{Chain: "b", Status: StatusDegraded, Verdict: domain.VerdictLagging})

	s := NewServer(reg, 0)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("degraded is still http 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("expected degraded, got %q", body["status"])
	}
}

func TestHandleHealth_CriticalIs503(t *testing.T) {
	reg := NewRegistry()
	reg.Update(ChainHealth{Chain: "a", Status: StatusCritical, Verdict: domain.VerdictStuck})

	s := NewServer(reg, 0)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Fatalf("expected 503 for critical, got %d", rec.Code)
	}
}

func TestHandleDetailed(t *testing.T) {
	reg := NewRegistry()
	reg.Update(ChainHealth{
		Chain:       "polygon",
		Status:      StatusHealthy,
		Verdict:     domain.VerdictHealthy,
		BlockHeight: 42,
		BlockLag:    3,
	})

	s := NewServer(reg, 0)
	rec := httptest.NewRecorder()
	s.handleDetailed(rec, httptest.NewRequest("GET", "/health/detailed", nil))

	var body map[string]ChainHealth
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	chain, ok := body["polygon"]
	if !ok {
		t.Fatal("expected polygon entry")
	}
	if chain.BlockHeight != 42 || chain.BlockLag != 3 {
		t.Errorf("unexpected detail %+v", chain)
	}
}
