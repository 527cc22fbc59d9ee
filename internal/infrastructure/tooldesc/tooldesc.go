// Package tooldesc loads optional YAML overrides for MCP tool descriptions,
// the static-file counterpart of a dynamic tool-config service. A missing
// file simply means compiled-in defaults apply everywhere.
package tooldesc

import (
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"statbridge/internal/config"
)

// Override adjusts one tool: replace its description or disable it.
type Override struct {
	Description string `yaml:"description"`
	Disabled    bool   `yaml:"disabled"`
}

// Config maps tool keys to overrides.
type Config struct {
	Tools map[string]Override `yaml:"tools"`
}

// Load reads the overrides file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Provide loads overrides from the configured path, falling back to an empty
// config when the file is absent or malformed.
func Provide(cfg *config.BridgeConfig) *Config {
	overrides, err := Load(cfg.ToolConfigPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", cfg.ToolConfigPath).Msg("ignoring unreadable tool description file")
		}
		return &Config{}
	}
	log.Info().Str("path", cfg.ToolConfigPath).Int("overrides", len(overrides.Tools)).Msg("loaded tool description overrides")
	return overrides
}

// Description returns the override for key, or fallback when absent.
func (c *Config) Description(key, fallback string) string {
	if c == nil {
		return fallback
	}
	if o, ok := c.Tools[key]; ok && o.Description != "" {
		return o.Description
	}
	return fallback
}

// Enabled reports whether the tool should be registered.
func (c *Config) Enabled(key string) bool {
	if c == nil {
		return true
	}
	o, ok := c.Tools[key]
	return !ok || !o.Disabled
}
