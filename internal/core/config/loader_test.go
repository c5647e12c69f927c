package config

import (
	"os"
	"testing"
	"time"

	"github.com/vietddude/nodeguard/internal/core/domain"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_TG_TOKEN", "123:abc")
	defer os.Unsetenv("TEST_TG_TOKEN")

	path := writeTemp(t, `
notify:
  telegram_token: ${TEST_TG_TOKEN}
chains:
  - name: mainnet
    url: http://localhost:8545
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Notify.TelegramToken != "123:abc" {
		t.Errorf("Expected token 123:abc, got %s", cfg.Notify.TelegramToken)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTemp(t, `
chains:
  - name: mainnet
    url: http://localhost:8545
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Global.MonitorInterval != 10 {
		t.Errorf("expected default monitor_interval 10, got %d", cfg.Global.MonitorInterval)
	}
	if cfg.Global.DefaultLagThreshold != 60 {
		t.Errorf("expected default lag threshold 60, got %d", cfg.Global.DefaultLagThreshold)
	}
	if cfg.Global.MinRestartInterval != 600 {
		t.Errorf("expected default min_restart_interval 600, got %d", cfg.Global.MinRestartInterval)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Global.LogCapture.ContainerLogLines != 5000 {
		t.Errorf("expected 5000 container log lines, got %d", cfg.Global.LogCapture.ContainerLogLines)
	}
}

func TestLoad_MutuallyExclusiveTargets(t *testing.T) {
	path := writeTemp(t, `
chains:
  - name: mainnet
    url: http://localhost:8545
    container: geth
    service: geth.service
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for container+service, got nil")
	}
}

func TestLoad_MissingURL(t *testing.T) {
	path := writeTemp(t, `
chains:
  - name: mainnet
    container: geth
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing rpc_urls, got nil")
	}
}

func TestLoad_NoChains(t *testing.T) {
	path := writeTemp(t, `
global:
  monitor_interval: 5
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty chains, got nil")
	}
}

func TestMerged_Overrides(t *testing.T) {
	path := writeTemp(t, `
global:
  default_lag_threshold: 60
  min_restart_interval: 600
  dry_run: true
chains:
  - name: polygon
    url: http://localhost:8745
    container: bor
    lag_threshold: 120
    min_restart_interval: 21600
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	merged := cfg.Merged(cfg.Chains[0])
	if merged.LagThreshold != 120 {
		t.Errorf("expected chain override 120, got %d", merged.LagThreshold)
	}
	if merged.MinRestartInterval != 21600 {
		t.Errorf("expected chain override 21600, got %d", merged.MinRestartInterval)
	}
	if merged.StuckCheckInterval != 30 {
		t.Errorf("expected inherited 30, got %d", merged.StuckCheckInterval)
	}
	if !merged.DryRun {
		t.Error("expected dry_run inherited from global")
	}
	if merged.RequestTimeout != 2*time.Second {
		t.Errorf("expected 2s request timeout, got %v", merged.RequestTimeout)
	}
	if merged.Target.Kind != domain.TargetContainer || merged.Target.Name != "bor" {
		t.Errorf("expected container target bor, got %+v", merged.Target)
	}
	if merged.Kind != domain.KindExecution {
		t.Errorf("expected default kind execution, got %s", merged.Kind)
	}
}

func TestMerged_LegacySingleURL(t *testing.T) {
	cfg := &AppConfig{}
	merged := cfg.Merged(ChainConfig{Name: "x", URL: "http://localhost:8545"})
	if len(merged.RPCURLs) != 1 || merged.RPCURLs[0] != "http://localhost:8545" {
		t.Errorf("expected url promoted to rpc_urls, got %v", merged.RPCURLs)
	}
}

func TestTarget_Variants(t *testing.T) {
	cases := []struct {
		cfg  ChainConfig
		kind domain.TargetKind
		name string
	}{
		{ChainConfig{Container: "bor"}, domain.TargetContainer, "bor"},
		{ChainConfig{Service: "geth.service"}, domain.TargetService, "geth.service"},
		{ChainConfig{RestartCommand: "systemctl restart geth"}, domain.TargetCommand, "systemctl restart geth"},
		{ChainConfig{}, domain.TargetNone, ""},
	}

	for _, c := range cases {
		target := c.cfg.Target()
		if target.Kind != c.kind || target.Name != c.name {
			t.Errorf("expected %s/%s, got %s/%s", c.kind, c.name, target.Kind, target.Name)
		}
	}
}
