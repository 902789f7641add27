package config

import (
	"time"
)

// Generation providers
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// DefaultAddr is the listen address used when none is configured
const DefaultAddr = ":3000"

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Config is the root configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Generation GenerationConfig `yaml:"generation"`
	Preview    PreviewConfig    `yaml:"preview"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// GenerationConfig selects and tunes the text-generation provider
type GenerationConfig struct {
	Provider         string   `yaml:"provider"` // openai, ollama
	Model            string   `yaml:"model"`
	BaseURL          string   `yaml:"base_url,omitempty"`
	APIKeyEnv        string   `yaml:"api_key_env"` // name of the variable, never the key
	Temperature      *float64 `yaml:"temperature"`
	MaxTokens        int      `yaml:"max_tokens"`
	Timeout          Duration `yaml:"timeout"`
	SystemPromptPath string   `yaml:"system_prompt_path,omitempty"`
}

// PreviewConfig holds render preview settings
type PreviewConfig struct {
	MeshCells int `yaml:"mesh_cells"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
