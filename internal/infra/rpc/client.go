package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client issues JSON-RPC and REST calls against an ordered endpoint list.
// The first well-formed, non-error response wins; later endpoints are only
// consulted when earlier ones fail.
type Client struct {
	endpoints  []string
	httpClient *http.Client
	retry      RetryConfig
}

// NewClient creates a client over the given endpoints.
func NewClient(endpoints []string, timeout time.Duration, retry RetryConfig) *Client {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig
	}
	return &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: retry,
	}
}

// Endpoints returns the configured endpoint list.
func (c *Client) Endpoints() []string { return c.endpoints }

// Call makes a JSON-RPC call, retrying per endpoint and failing over in
// order.
func (c *Client) Call(ctx context.Context, method string, params []any) (any, error) {
	var lastErr error
	for _, endpoint := range c.endpoints {
		result, err := c.callWithRetry(ctx, endpoint, method, params)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ClassifyError(err) == ActionFatal {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all endpoints failed: %w", lastErr)
}

// GetJSON performs a REST GET of path against the endpoints in order and
// decodes the JSON body into out. Used for beacon-API probes.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for _, endpoint := range c.endpoints {
		err := c.getWithRetry(ctx, endpoint+path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if ClassifyError(err) == ActionFatal {
			return err
		}
	}
	return fmt.Errorf("all endpoints failed: %w", lastErr)
}

// GetStatus performs a REST GET and reports only the HTTP status code, for
// health endpoints whose status code is the payload.
func (c *Client) GetStatus(ctx context.Context, path string) (int, error) {
	var lastErr error
	for _, endpoint := range c.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+path, nil)
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode, nil
	}
	return 0, fmt.Errorf("all endpoints failed: %w", lastErr)
}

func (c *Client) callWithRetry(ctx context.Context, endpoint, method string, params []any) (any, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		result, err := c.call(ctx, endpoint, method, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		action := ClassifyError(err)
		if action == ActionFatal || action == ActionFailover {
			return nil, err
		}
		if attempt == c.retry.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retry.Backoff):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

func (c *Client) getWithRetry(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		err := c.get(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err

		action := ClassifyError(err)
		if action == ActionFatal || action == ActionFailover {
			return err
		}
		if attempt == c.retry.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry.Backoff):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

// call makes a single JSON-RPC call against one endpoint.
func (c *Client) call(ctx context.Context, endpoint, method string, params []any) (any, error) {
	if params == nil {
		params = []any{}
	}
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp struct {
		Result any             `json:"result"`
		Error  *map[string]any `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if rpcResp.Error != nil {
		errMsg := "unknown error"
		if msg, ok := (*rpcResp.Error)["message"].(string); ok {
			errMsg = msg
		}
		if code, ok := (*rpcResp.Error)["code"].(float64); ok {
			return nil, fmt.Errorf("rpc error %d: %s", int(code), errMsg)
		}
		return nil, fmt.Errorf("rpc error: %s", errMsg)
	}

	return rpcResp.Result, nil
}

// get makes a single REST GET against one URL.
func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rest call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
