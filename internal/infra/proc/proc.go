// Package proc drives docker and systemd through their CLIs. Every
// operation shells out via a pluggable runner so tests never touch a real
// daemon.
package proc

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/nodeguard/internal/core/domain"
)

// RunFunc executes a command and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) (string, error)

func execRun(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// Controller manages restart targets on the local host.
type Controller struct {
	run RunFunc
	log *slog.Logger
}

// NewController creates a controller that shells out to docker/systemctl.
func NewController(log *slog.Logger) *Controller {
	return &Controller{run: execRun, log: log}
}

// NewControllerWithRunner injects a runner, for tests.
func NewControllerWithRunner(run RunFunc, log *slog.Logger) *Controller {
	return &Controller{run: run, log: log}
}

// ContainerExists reports whether a docker container with the given name
// exists (running or not).
func (c *Controller) ContainerExists(ctx context.Context, name string) (bool, error) {
	out, err := c.run(ctx, "docker", "inspect", "--format", "{{.Name}}", name)
	if err != nil {
		if strings.Contains(strings.ToLower(out), "no such") {
			return false, nil
		}
		return false, fmt.Errorf("docker inspect %s: %w", name, err)
	}
	return true, nil
}

// RestartContainer restarts a docker container.
func (c *Controller) RestartContainer(ctx context.Context, name string) error {
	if out, err := c.run(ctx, "docker", "restart", name); err != nil {
		return fmt.Errorf("%w: docker restart %s: %s", domain.ErrExecutionFailed, name, out)
	}
	return nil
}

// ServiceExists reports whether a systemd unit is loaded.
func (c *Controller) ServiceExists(ctx context.Context, name string) (bool, error) {
	out, err := c.run(ctx, "systemctl", "show", "-p", "LoadState", "--value", name)
	if err != nil {
		return false, fmt.Errorf("systemctl show %s: %w", name, err)
	}
	return out == "loaded", nil
}

// RestartService restarts a systemd unit.
func (c *Controller) RestartService(ctx context.Context, name string) error {
	if out, err := c.run(ctx, "systemctl", "restart", name); err != nil {
		return fmt.Errorf("%w: systemctl restart %s: %s", domain.ErrExecutionFailed, name, out)
	}
	return nil
}

// RunCommand executes a configured restart command line through the shell.
func (c *Controller) RunCommand(ctx context.Context, cmdline string) error {
	if out, err := c.run(ctx, "sh", "-c", cmdline); err != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrExecutionFailed, cmdline, out)
	}
	return nil
}

// StartTime reports the unix second the target last started, when the
// target exposes one. Shell-command targets report unknown.
func (c *Controller) StartTime(ctx context.Context, target domain.RestartTarget) (uint64, bool) {
	switch target.Kind {
	case domain.TargetContainer:
		return c.containerStartTime(ctx, target.Name)
	case domain.TargetService:
		return c.serviceStartTime(ctx, target.Name)
	default:
		return 0, false
	}
}

func (c *Controller) containerStartTime(ctx context.Context, name string) (uint64, bool) {
	out, err := c.run(ctx, "docker", "inspect", "--format", "{{.State.StartedAt}}", name)
	if err != nil {
		return 0, false
	}
	started, err := time.Parse(time.RFC3339Nano, out)
	if err != nil || started.Unix() <= 0 {
		return 0, false
	}
	return uint64(started.Unix()), true
}

func (c *Controller) serviceStartTime(ctx context.Context, name string) (uint64, bool) {
	// ActiveEnterTimestamp is realtime; the µs value avoids locale-dependent
	// date parsing.
	out, err := c.run(ctx, "systemctl", "show", "-p", "ActiveEnterTimestamp", "--value", name)
	if err == nil {
		if ts, perr := time.Parse("Mon 2006-01-02 15:04:05 MST", out); perr == nil && ts.Unix() > 0 {
			return uint64(ts.Unix()), true
		}
	}
	out, err = c.run(ctx, "systemctl", "show", "-p", "ActiveEnterTimestampMonotonic", "--value", name)
	if err != nil {
		return 0, false
	}
	usec, perr := strconv.ParseUint(out, 10, 64)
	if perr != nil || usec == 0 {
		return 0, false
	}
	uptime, ok := hostUptime()
	if !ok {
		return 0, false
	}
	boot := uint64(time.Now().Unix()) - uptime
	return boot + usec/1_000_000, true
}
