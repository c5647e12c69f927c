package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. JSON configs from the legacy
// deployments parse as-is (JSON is a YAML subset).
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	g := &cfg.Global
	if g.MonitorInterval == 0 {
		g.MonitorInterval = 10
	}
	if g.RequestTimeout == 0 {
		g.RequestTimeout = 2
	}
	if g.MaxRetries == 0 {
		g.MaxRetries = 3
	}
	if g.RetryBackoff == 0 {
		g.RetryBackoff = 1
	}
	if g.DefaultLagThreshold == 0 {
		g.DefaultLagThreshold = 60
	}
	if g.StuckCheckInterval == 0 {
		g.StuckCheckInterval = 30
	}
	if g.MinRestartInterval == 0 {
		g.MinRestartInterval = 600
	}
	if g.MinPeers == 0 {
		g.MinPeers = 10
	}
	if g.LogCapture.ContainerLogLines == 0 {
		g.LogCapture.ContainerLogLines = 5000
	}
	if g.LogCapture.ServiceLogLines == 0 {
		g.LogCapture.ServiceLogLines = 5000
	}
	if g.LogCapture.HostLogDest == "" {
		g.LogCapture.HostLogDest = "./log/container-logs"
	}
	if g.LogCapture.HostServiceLogDest == "" {
		g.LogCapture.HostServiceLogDest = "./log/service-logs"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Notify.CooldownRateMinutes == 0 {
		cfg.Notify.CooldownRateMinutes = 5
	}
}

// Validate rejects contradictory or incomplete chain configurations.
// Validation failures are fatal at startup.
func (a *AppConfig) Validate() error {
	if len(a.Chains) == 0 {
		return fmt.Errorf("config: no chains defined")
	}

	seen := make(map[string]bool, len(a.Chains))
	for i, c := range a.Chains {
		if c.Name == "" {
			return fmt.Errorf("config: chain at index %d: missing name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("config: chain %q: duplicate name", c.Name)
		}
		seen[c.Name] = true

		if len(c.RPCURLs) == 0 && c.URL == "" {
			return fmt.Errorf("config: chain %q: missing rpc_urls", c.Name)
		}

		set := 0
		for _, v := range []string{c.Container, c.Service, c.RestartCommand} {
			if v != "" {
				set++
			}
		}
		if set > 1 {
			return fmt.Errorf(
				"config: chain %q: container, service and restart_command are mutually exclusive",
				c.Name,
			)
		}

		switch c.Kind {
		case "", "execution", "consensus":
		default:
			return fmt.Errorf("config: chain %q: unknown kind %q", c.Name, c.Kind)
		}
	}

	return nil
}
