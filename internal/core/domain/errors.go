package domain

import (
	"errors"
	"fmt"
)

// Action errors. TargetNotFound is fatal for the attempted action and is
// never retried; ExecutionFailed consumes the cooldown and defers the next
// attempt to the next eligible cycle.
var (
	ErrTargetNotFound  = errors.New("restart target not found")
	ErrExecutionFailed = errors.New("restart execution failed")
)

// ProbeError wraps a transport or decoding failure from an RPC endpoint.
// Probe errors never escalate past their worker; a cycle that exhausts its
// retries is treated as a missed probe and logged.
type ProbeError struct {
	Endpoint string
	Method   string
	Err      error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }
