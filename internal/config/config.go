package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// ServiceVersion is reported by /health and in MCP server metadata.
	ServiceVersion = "1.0.0"

	// StatsServiceName identifies the numeric API process.
	StatsServiceName = "stats-api"

	// BridgeServiceName identifies the MCP proxy process.
	BridgeServiceName = "statbridge-mcp"
)

// StatsConfig holds configuration for the stats API server.
type StatsConfig struct {
	HTTPPort  string `env:"STATS_API_PORT" envDefault:"8081"`
	LogLevel  string `env:"STATS_API_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STATS_API_LOG_FORMAT" envDefault:"json"` // json or console

	// EnableExec gates /api/execute. Expression evaluation is sandboxed but
	// still caller-controlled, so it stays off unless explicitly requested.
	EnableExec bool `env:"STATS_ENABLE_EXEC" envDefault:"false"`

	// HeadRows bounds how many rows dataframe head/tail operations return.
	HeadRows int `env:"STATS_API_HEAD_ROWS" envDefault:"6"`
}

// BridgeConfig holds configuration for the MCP bridge server.
type BridgeConfig struct {
	HTTPPort  string `env:"STATS_MCP_HTTP_PORT" envDefault:"8091"`
	LogLevel  string `env:"STATS_MCP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STATS_MCP_LOG_FORMAT" envDefault:"json"`

	// StatsAPIURL is the base URL of the stats API server.
	StatsAPIURL string `env:"STATS_API_URL" envDefault:"http://localhost:8081"`

	// RequestTimeoutSec bounds a full tool-call round trip; ConnectTimeoutSec
	// bounds dialing only. Both mandatory so a hung stats server cannot hang
	// the MCP session.
	RequestTimeoutSec int `env:"STATS_MCP_REQUEST_TIMEOUT" envDefault:"30"`
	ConnectTimeoutSec int `env:"STATS_MCP_CONNECT_TIMEOUT" envDefault:"5"`

	// ToolConfigPath points at an optional YAML file overriding tool
	// descriptions or disabling tools. Missing file is not an error.
	ToolConfigPath string `env:"STATS_MCP_TOOL_CONFIG" envDefault:"configs/tool-descriptions.yml"`
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *BridgeConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// ConnectTimeout returns the dial timeout as a duration.
func (c *BridgeConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

// LoadStats loads the stats API configuration from environment variables.
func LoadStats() (*StatsConfig, error) {
	cfg := &StatsConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.HeadRows <= 0 {
		return nil, fmt.Errorf("STATS_API_HEAD_ROWS must be positive, got %d", cfg.HeadRows)
	}
	return cfg, nil
}

// LoadBridge loads the MCP bridge configuration from environment variables.
func LoadBridge() (*BridgeConfig, error) {
	cfg := &BridgeConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.RequestTimeoutSec <= 0 {
		return nil, fmt.Errorf("STATS_MCP_REQUEST_TIMEOUT must be positive, got %d", cfg.RequestTimeoutSec)
	}
	if cfg.ConnectTimeoutSec <= 0 {
		return nil, fmt.Errorf("STATS_MCP_CONNECT_TIMEOUT must be positive, got %d", cfg.ConnectTimeoutSec)
	}
	return cfg, nil
}
