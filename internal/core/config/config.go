package config

import (
	"time"

	"github.com/vietddude/nodeguard/internal/core/domain"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Global  GlobalConfig  `yaml:"global"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Notify  NotifyConfig  `yaml:"notify"`
	Chains  []ChainConfig `yaml:"chains"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// NotifyConfig holds Telegram notifier settings. Empty token disables
// notifications.
type NotifyConfig struct {
	TelegramToken       string `yaml:"telegram_token"`
	TelegramChatID      string `yaml:"telegram_chat_id"`
	CooldownRateMinutes int    `yaml:"cooldown_rate_minutes"`
}

// GlobalConfig holds defaults inherited by every chain. All intervals and
// thresholds are whole seconds, matching the legacy watcher configs.
type GlobalConfig struct {
	MonitorInterval     int              `yaml:"monitor_interval"`
	RequestTimeout      int              `yaml:"request_timeout"`
	MaxRetries          int              `yaml:"max_retries"`
	RetryBackoff        int              `yaml:"retry_backoff"`
	DefaultLagThreshold int              `yaml:"default_lag_threshold"`
	StuckCheckInterval  int              `yaml:"stuck_check_interval"`
	MinRestartInterval  int              `yaml:"min_restart_interval"`
	MinPeers            int              `yaml:"min_peers"`
	DryRun              bool             `yaml:"dry_run"`
	LogCapture          LogCaptureConfig `yaml:"log_capture"`
}

// LogCaptureConfig controls the diagnostic log snapshot taken before a
// restart.
type LogCaptureConfig struct {
	ContainerLogLines  int    `yaml:"container_log_lines"`
	ServiceLogLines    int    `yaml:"service_log_lines"`
	HostLogDest        string `yaml:"host_log_dest"`
	HostServiceLogDest string `yaml:"host_service_log_dest"`
}

// ChainConfig holds settings for one monitored endpoint. Zero-valued
// numeric fields inherit the global default.
type ChainConfig struct {
	Name string           `yaml:"name"`
	Kind domain.ChainKind `yaml:"kind"` // execution (default) or consensus

	// RPCURLs are tried in order within a single probe (fallback, not
	// fan-out). URL is the legacy single-endpoint spelling.
	RPCURLs []string `yaml:"rpc_urls"`
	URL     string   `yaml:"url"`

	// Exactly one of Container / Service / RestartCommand may be set.
	Container      string `yaml:"container"`
	Service        string `yaml:"service"`
	RestartCommand string `yaml:"restart_command"`

	LagThreshold       int `yaml:"lag_threshold"`
	StuckCheckInterval int `yaml:"stuck_check_interval"`
	MinRestartInterval int `yaml:"min_restart_interval"`
	MinPeers           int `yaml:"min_peers"`

	// GenesisTime anchors slot-to-timestamp conversion for consensus
	// chains. Defaults to Ethereum mainnet genesis.
	GenesisTime uint64 `yaml:"genesis_time"`

	// ContainerLogs is an optional in-container folder copied out before a
	// restart.
	ContainerLogs       string   `yaml:"container_logs"`
	SecondaryContainers []string `yaml:"secondary_containers"`
	SecondaryServices   []string `yaml:"secondary_services"`
}

// TargetConfig is the fully merged, immutable per-chain view handed to the
// worker. Built once at load time.
type TargetConfig struct {
	Name string
	Kind domain.ChainKind

	RPCURLs []string

	MonitorInterval    time.Duration
	RequestTimeout     time.Duration
	MaxRetries         int
	RetryBackoff       time.Duration
	LagThreshold       uint64
	StuckCheckInterval uint64
	MinRestartInterval uint64
	MinPeers           uint32
	GenesisTime        uint64

	Target              domain.RestartTarget
	ContainerLogs       string
	SecondaryContainers []string
	SecondaryServices   []string

	DryRun     bool
	LogCapture LogCaptureConfig
}

// Target resolves the chain's restart target variant.
func (c ChainConfig) Target() domain.RestartTarget {
	switch {
	case c.Container != "":
		return domain.RestartTarget{Kind: domain.TargetContainer, Name: c.Container}
	case c.Service != "":
		return domain.RestartTarget{Kind: domain.TargetService, Name: c.Service}
	case c.RestartCommand != "":
		return domain.RestartTarget{Kind: domain.TargetCommand, Name: c.RestartCommand}
	default:
		return domain.RestartTarget{Kind: domain.TargetNone}
	}
}

// Merged produces the effective per-chain config, applying global defaults
// to every unset chain field.
func (a *AppConfig) Merged(c ChainConfig) TargetConfig {
	pick := func(own, def int) int {
		if own > 0 {
			return own
		}
		return def
	}

	urls := c.RPCURLs
	if len(urls) == 0 && c.URL != "" {
		urls = []string{c.URL}
	}

	kind := c.Kind
	if kind == "" {
		kind = domain.KindExecution
	}

	genesis := c.GenesisTime
	if genesis == 0 {
		genesis = mainnetGenesisTime
	}

	return TargetConfig{
		Name:                c.Name,
		Kind:                kind,
		RPCURLs:             urls,
		MonitorInterval:     time.Duration(a.Global.MonitorInterval) * time.Second,
		RequestTimeout:      time.Duration(a.Global.RequestTimeout) * time.Second,
		MaxRetries:          a.Global.MaxRetries,
		RetryBackoff:        time.Duration(a.Global.RetryBackoff) * time.Second,
		LagThreshold:        uint64(pick(c.LagThreshold, a.Global.DefaultLagThreshold)),
		StuckCheckInterval:  uint64(pick(c.StuckCheckInterval, a.Global.StuckCheckInterval)),
		MinRestartInterval:  uint64(pick(c.MinRestartInterval, a.Global.MinRestartInterval)),
		MinPeers:            uint32(pick(c.MinPeers, a.Global.MinPeers)),
		GenesisTime:         genesis,
		Target:              c.Target(),
		ContainerLogs:       c.ContainerLogs,
		SecondaryContainers: c.SecondaryContainers,
		SecondaryServices:   c.SecondaryServices,
		DryRun:              a.Global.DryRun,
		LogCapture:          a.Global.LogCapture,
	}
}

// mainnetGenesisTime is the Ethereum beacon chain genesis, used when a
// consensus chain does not override genesis_time.
const mainnetGenesisTime = 1606824023
