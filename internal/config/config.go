// Package config provides configuration management for the qompath server.
//
// The config file only describes how the process runs. The scene itself
// lives in memory and the generation credential stays in the environment.
//
// Config file locations (priority order):
//  1. $QOMPATH_CONFIG
//  2. ./qompath.yaml
//  3. $XDG_CONFIG_HOME/qompath/config.yaml
//  4. ~/.config/qompath/config.yaml
//  5. /etc/qompath/config.yaml
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		// Generation requests wait on the upstream model
		c.Server.WriteTimeout = Duration(90 * time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	g := &c.Generation
	if g.Provider == "" {
		g.Provider = ProviderOpenAI
	}
	if g.Model == "" {
		switch g.Provider {
		case ProviderOllama:
			g.Model = "llama3"
		default:
			g.Model = "gpt-4o-mini"
		}
	}
	if g.APIKeyEnv == "" {
		g.APIKeyEnv = "OPENAI_API_KEY"
	}
	if g.Temperature == nil {
		t := 0.2
		g.Temperature = &t
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = 2048
	}
	if g.Timeout == 0 {
		g.Timeout = Duration(60 * time.Second)
	}

	if c.Preview.MeshCells == 0 {
		c.Preview.MeshCells = 32
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Generation.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("config: unknown generation provider %q", c.Generation.Provider)
	}
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if c.Preview.MeshCells < 4 || c.Preview.MeshCells > 256 {
		return fmt.Errorf("config: preview.mesh_cells must be between 4 and 256, got %d", c.Preview.MeshCells)
	}
	if c.Generation.MaxTokens < 0 {
		return fmt.Errorf("config: generation.max_tokens must not be negative")
	}
	return nil
}

// APIKey reads the generation credential from the configured environment
// variable. It is empty when the variable is unset.
func (c *Config) APIKey() string {
	return os.Getenv(c.Generation.APIKeyEnv)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Log level: %s\n", c.Server.Addr, c.Log.Level)
	summary += fmt.Sprintf("Generation: %s/%s (timeout %s)", c.Generation.Provider, c.Generation.Model, c.Generation.Timeout.Duration())
	if c.Generation.SystemPromptPath != "" {
		summary += fmt.Sprintf(", prompt %s", c.Generation.SystemPromptPath)
	}
	return summary
}
