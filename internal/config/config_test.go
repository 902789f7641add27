package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %s, want %s", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Generation.Provider != ProviderOpenAI {
		t.Errorf("Provider = %s, want %s", cfg.Generation.Provider, ProviderOpenAI)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("Model = %s, want gpt-4o-mini", cfg.Generation.Model)
	}
	if cfg.Generation.Temperature == nil || *cfg.Generation.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", cfg.Generation.MaxTokens)
	}
	if cfg.Generation.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv = %s, want OPENAI_API_KEY", cfg.Generation.APIKeyEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestProviderModelDefault(t *testing.T) {
	cfg := &Config{Generation: GenerationConfig{Provider: ProviderOllama}}
	cfg.applyDefaults()

	if cfg.Generation.Model != "llama3" {
		t.Errorf("Model = %s, want llama3", cfg.Generation.Model)
	}
}

func TestZeroTemperatureIsKept(t *testing.T) {
	zero := 0.0
	cfg := &Config{Generation: GenerationConfig{Temperature: &zero}}
	cfg.applyDefaults()

	if *cfg.Generation.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", *cfg.Generation.Temperature)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"unknown provider", func(c *Config) { c.Generation.Provider = "bard" }, "provider"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"mesh too coarse", func(c *Config) { c.Preview.MeshCells = 2 }, "mesh_cells"},
		{"mesh too fine", func(c *Config) { c.Preview.MeshCells = 1000 }, "mesh_cells"},
		{"negative tokens", func(c *Config) { c.Generation.MaxTokens = -1 }, "max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.errSub)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":8080"
	cfg.Generation.Provider = ProviderOllama
	cfg.Generation.Model = "mistral"
	cfg.Generation.Timeout = Duration(2 * time.Minute)

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", loaded.Server.Addr)
	}
	if loaded.Generation.Model != "mistral" {
		t.Errorf("Model = %s, want mistral", loaded.Generation.Model)
	}
	if loaded.Generation.Timeout.Duration() != 2*time.Minute {
		t.Errorf("Timeout = %s, want 2m", loaded.Generation.Timeout.Duration())
	}
}

func TestLoadPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "generation:\n  timeout: 45s\n  system_prompt_path: prompt.md\nlog:\n  level: debug\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Generation.Timeout.Duration() != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.Generation.Timeout.Duration())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %s, want default", cfg.Server.Addr)
	}
	if cfg.Preview.MeshCells != 32 {
		t.Errorf("MeshCells = %d, want 32", cfg.Preview.MeshCells)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", "server:\n  read_timeout: soon\n"},
		{"bad yaml", "server: [\n"},
		{"bad provider", "generation:\n  provider: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := LoadFromPath(configPath); err == nil {
				t.Error("LoadFromPath() should fail")
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.APIKeyEnv = "QOMPATH_TEST_KEY"

	t.Setenv("QOMPATH_TEST_KEY", "sk-test")
	if got := cfg.APIKey(); got != "sk-test" {
		t.Errorf("APIKey() = %q, want sk-test", got)
	}

	t.Setenv("QOMPATH_TEST_KEY", "")
	if got := cfg.APIKey(); got != "" {
		t.Errorf("APIKey() = %q, want empty", got)
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	// Should find config in working directory
	found := FindConfigPath()
	if found == "" {
		t.Fatal("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found = FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	// Explicit path exists, should win
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found = FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/explicit.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/me")

	want := []string{
		"/explicit.yaml",
		ConfigFileName,
		"/xdg/qompath/config.yaml",
		"/home/me/.config/qompath/config.yaml",
		"/etc/qompath/config.yaml",
	}
	got := SearchPaths()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("SearchPaths() = %v, want %v", got, want)
	}
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		configPath, path, want string
	}{
		{"/etc/qompath/config.yaml", "prompt.md", "/etc/qompath/prompt.md"},
		{"/etc/qompath/config.yaml", "/srv/prompt.md", "/srv/prompt.md"},
		{"", "prompt.md", "prompt.md"},
		{"/etc/qompath/config.yaml", "", ""},
	}

	for _, tt := range tests {
		if got := ResolveRelative(tt.configPath, tt.path); got != tt.want {
			t.Errorf("ResolveRelative(%q, %q) = %q, want %q", tt.configPath, tt.path, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
