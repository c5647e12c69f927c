package restart

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
)

// =============================================================================
// Stub process controller
// =============================================================================

type stubProc struct {
	containers map[string]bool
	services   map[string]bool

	restartErr error

	restartedContainers []string
	restartedServices   []string
	ranCommands         []string
	captured            int
}

func newStubProc() *stubProc {
	return &stubProc{containers: map[string]bool{}, services: map[string]bool{}}
}

func (s *stubProc) ContainerExists(_ context.Context, name string) (bool, error) {
	return s.containers[name], nil
}

func (s *stubProc) RestartContainer(_ context.Context, name string) error {
	if s.restartErr != nil {
		return s.restartErr
	}
	s.restartedContainers = append(s.restartedContainers, name)
	return nil
}

func (s *stubProc) ServiceExists(_ context.Context, name string) (bool, error) {
	return s.services[name], nil
}

func (s *stubProc) RestartService(_ context.Context, name string) error {
	if s.restartErr != nil {
		return s.restartErr
	}
	s.restartedServices = append(s.restartedServices, name)
	return nil
}

func (s *stubProc) RunCommand(_ context.Context, cmdline string) error {
	s.ranCommands = append(s.ranCommands, cmdline)
	return nil
}

func (s *stubProc) CaptureLogs(_ context.Context, _ config.TargetConfig, _ string) {
	s.captured++
}

// =============================================================================
// Execute
// =============================================================================

func TestExecute_RestartsContainer(t *testing.T) {
	proc := newStubProc()
	proc.containers["bor"] = true

	e := NewExecutor(containerCfg(), proc, testLog())
	actionID, err := e.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if actionID == "" {
		t.Error("expected an action id")
	}
	if proc.captured != 1 {
		t.Errorf("expected one log capture, got %d", proc.captured)
	}
	if len(proc.restartedContainers) != 1 || proc.restartedContainers[0] != "bor" {
		t.Errorf("expected bor restarted, got %v", proc.restartedContainers)
	}
}

func TestExecute_TargetNotFound(t *testing.T) {
	proc := newStubProc() // bor absent

	e := NewExecutor(containerCfg(), proc, testLog())
	_, err := e.Execute(context.Background())
	if !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if proc.captured != 0 {
		t.Error("missing target must not capture logs")
	}
}

func TestExecute_ExecutionFailureSurfaces(t *testing.T) {
	proc := newStubProc()
	proc.containers["bor"] = true
	proc.restartErr = domain.ErrExecutionFailed

	e := NewExecutor(containerCfg(), proc, testLog())
	if _, err := e.Execute(context.Background()); !errors.Is(err, domain.ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
}

func TestExecute_DryRunSkipsRestart(t *testing.T) {
	proc := newStubProc()
	proc.containers["bor"] = true

	cfg := containerCfg()
	cfg.DryRun = true
	cfg.SecondaryContainers = []string{"heimdall"}

	e := NewExecutor(cfg, proc, testLog())
	if _, err := e.Execute(context.Background()); err != nil {
		t.Fatalf("dry-run must report success: %v", err)
	}
	if proc.captured != 1 {
		t.Error("dry-run still captures logs")
	}
	if len(proc.restartedContainers) != 0 {
		t.Errorf("dry-run must not restart anything, got %v", proc.restartedContainers)
	}
}

func TestExecute_DryRunStillChecksExistence(t *testing.T) {
	proc := newStubProc() // bor absent

	cfg := containerCfg()
	cfg.DryRun = true

	e := NewExecutor(cfg, proc, testLog())
	if _, err := e.Execute(context.Background()); !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("dry-run still validates the target, got %v", err)
	}
}

func TestExecute_SecondaryTargets(t *testing.T) {
	proc := newStubProc()
	proc.containers["bor"] = true

	cfg := containerCfg()
	cfg.SecondaryContainers = []string{"heimdall"}
	cfg.SecondaryServices = []string{"telemetry"}

	e := NewExecutor(cfg, proc, testLog())
	if _, err := e.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(proc.restartedContainers) != 2 {
		t.Errorf("expected primary + secondary containers, got %v", proc.restartedContainers)
	}
	if len(proc.restartedServices) != 1 || proc.restartedServices[0] != "telemetry" {
		t.Errorf("expected telemetry restarted, got %v", proc.restartedServices)
	}
}

func TestExecute_CommandTarget(t *testing.T) {
	proc := newStubProc()

	cfg := containerCfg()
	cfg.Target = domain.RestartTarget{Kind: domain.TargetCommand, Name: "/usr/local/bin/restart-node.sh"}

	e := NewExecutor(cfg, proc, testLog())
	if _, err := e.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(proc.ranCommands) != 1 || proc.ranCommands[0] != "/usr/local/bin/restart-node.sh" {
		t.Errorf("expected command run, got %v", proc.ranCommands)
	}
}
