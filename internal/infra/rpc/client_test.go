package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcServer(t *testing.T, result any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected method POST, got %s", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      body["id"],
			"result":  result,
		})
	}))
}

func TestClient_Call(t *testing.T) {
	server := rpcServer(t, "0x10d4f")
	defer server.Close()

	c := NewClient([]string{server.URL}, 2*time.Second, DefaultRetryConfig)
	result, err := c.Call(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result != "0x10d4f" {
		t.Errorf("expected 0x10d4f, got %v", result)
	}
}

func TestClient_FailoverToSecondEndpoint(t *testing.T) {
	var primaryCalls atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer primary.Close()

	secondary := rpcServer(t, "0x1")
	defer secondary.Close()

	c := NewClient(
		[]string{primary.URL, secondary.URL},
		2*time.Second,
		RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond},
	)

	result, err := c.Call(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result != "0x1" {
		t.Errorf("expected secondary result, got %v", result)
	}
	// 429 is failover, not retry: primary must be hit exactly once
	if primaryCalls.Load() != 1 {
		t.Errorf("expected 1 primary call, got %d", primaryCalls.Load())
	}
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": "0x2"})
	}))
	defer server.Close()

	c := NewClient(
		[]string{server.URL},
		2*time.Second,
		RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond},
	)

	result, err := c.Call(context.Background(), "eth_blockNumber", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result != "0x2" {
		t.Errorf("expected 0x2, got %v", result)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_RPCErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32601, "message": "method not found"},
		})
	}))
	defer server.Close()

	c := NewClient([]string{server.URL}, 2*time.Second, DefaultRetryConfig)
	if _, err := c.Call(context.Background(), "eth_bogus", nil); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eth/v1/node/syncing" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"is_syncing": false, "head_slot": "123"},
		})
	}))
	defer server.Close()

	c := NewClient([]string{server.URL}, 2*time.Second, DefaultRetryConfig)

	var out struct {
		Data struct {
			IsSyncing bool   `json:"is_syncing"`
			HeadSlot  string `json:"head_slot"`
		} `json:"data"`
	}
	if err := c.GetJSON(context.Background(), "/eth/v1/node/syncing", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Data.IsSyncing || out.Data.HeadSlot != "123" {
		t.Errorf("unexpected decode: %+v", out.Data)
	}
}

func TestClient_GetJSONFailsOverOnForbidden(t *testing.T) {
	var primaryCalls atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": "ok"})
	}))
	defer secondary.Close()

	c := NewClient(
		[]string{primary.URL, secondary.URL},
		2*time.Second,
		RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond},
	)

	var out struct {
		Data string `json:"data"`
	}
	if err := c.GetJSON(context.Background(), "/eth/v1/node/syncing", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Data != "ok" {
		t.Errorf("expected secondary payload, got %+v", out)
	}
	// 403 is failover, not retry: primary must be hit exactly once
	if primaryCalls.Load() != 1 {
		t.Errorf("expected 1 primary call, got %d", primaryCalls.Load())
	}
}

func TestClassifyError_Fatal(t *testing.T) {
	err := &testError{"rpc error -32601: method not found"}
	if ClassifyError(err) != ActionFatal {
		t.Error("expected fatal for -32601")
	}
}

func TestClassifyError_Failover(t *testing.T) {
	err := &testError{"http 429: too many requests"}
	if ClassifyError(err) != ActionFailover {
		t.Error("expected failover for 429")
	}
}

func TestClassifyError_Retry(t *testing.T) {
	err := &testError{"http 500: internal error"}
	if ClassifyError(err) != ActionRetry {
		t.Error("expected retry for 500")
	}
}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
