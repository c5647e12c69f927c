package proc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vietddude/nodeguard/internal/core/config"
	"github.com/vietddude/nodeguard/internal/core/domain"
)

// CaptureLogs snapshots the target's recent logs before a restart so the
// evidence of why it stalled survives the restart. Every step is
// best-effort; a failed capture is logged and never blocks the restart.
func (c *Controller) CaptureLogs(ctx context.Context, cfg config.TargetConfig, actionID string) {
	stamp := time.Now().Format("20060102-150405")

	switch cfg.Target.Kind {
	case domain.TargetContainer:
		c.captureContainerLogs(ctx, cfg, cfg.Target.Name, stamp, actionID)
	case domain.TargetService:
		c.captureServiceLogs(ctx, cfg, cfg.Target.Name, stamp, actionID)
	}
}

func (c *Controller) captureContainerLogs(ctx context.Context, cfg config.TargetConfig, name, stamp, actionID string) {
	dest := cfg.LogCapture.HostLogDest
	if err := os.MkdirAll(dest, 0o755); err != nil {
		c.log.Warn("Log capture dir unavailable", "chain", cfg.Name, "action", actionID, "error", err)
		return
	}

	lines := strconv.Itoa(cfg.LogCapture.ContainerLogLines)
	out, err := c.run(ctx, "docker", "logs", "--tail", lines, name)
	if err != nil {
		c.log.Warn("Container log capture failed", "chain", cfg.Name, "action", actionID, "error", err)
	} else {
		file := filepath.Join(dest, fmt.Sprintf("%s-%s.log", name, stamp))
		if werr := os.WriteFile(file, []byte(out), 0o644); werr != nil {
			c.log.Warn("Container log write failed", "chain", cfg.Name, "action", actionID, "error", werr)
		} else {
			c.log.Info("Captured container logs", "chain", cfg.Name, "action", actionID, "file", file)
		}
	}

	// Optional in-container log folder
	if cfg.ContainerLogs != "" {
		target := filepath.Join(dest, fmt.Sprintf("%s-%s-files", name, stamp))
		if out, err := c.run(ctx, "docker", "cp", name+":"+cfg.ContainerLogs, target); err != nil {
			c.log.Warn("Container log copy failed", "chain", cfg.Name, "action", actionID, "error", err, "output", out)
		} else {
			c.log.Info("Copied container log folder", "chain", cfg.Name, "action", actionID, "dest", target)
		}
	}
}

func (c *Controller) captureServiceLogs(ctx context.Context, cfg config.TargetConfig, name, stamp, actionID string) {
	dest := cfg.LogCapture.HostServiceLogDest
	if err := os.MkdirAll(dest, 0o755); err != nil {
		c.log.Warn("Log capture dir unavailable", "chain", cfg.Name, "action", actionID, "error", err)
		return
	}

	lines := strconv.Itoa(cfg.LogCapture.ServiceLogLines)
	out, err := c.run(ctx, "journalctl", "-u", name, "-n", lines, "--no-pager")
	if err != nil {
		c.log.Warn("Service log capture failed", "chain", cfg.Name, "action", actionID, "error", err)
		return
	}
	file := filepath.Join(dest, fmt.Sprintf("%s-%s.log", name, stamp))
	if werr := os.WriteFile(file, []byte(out), 0o644); werr != nil {
		c.log.Warn("Service log write failed", "chain", cfg.Name, "action", actionID, "error", werr)
		return
	}
	c.log.Info("Captured service logs", "chain", cfg.Name, "action", actionID, "file", file)
}
