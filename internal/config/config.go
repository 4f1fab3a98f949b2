// Package config loads and persists the Gemini OS configuration.
// The config lives at <base>/config.yaml where <base> defaults to
// ~/.geminios. Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all Gemini OS configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM gateway configuration
	LLM LLMConfig `yaml:"llm"`

	// Remote document store configuration
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// UX settings
	UX UXConfig `yaml:"ux"`
}

// LoggingConfig controls the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// UXConfig holds presentation preferences.
type UXConfig struct {
	Theme     string `yaml:"theme"`      // "dark" or "light"
	VoiceMode bool   `yaml:"voice_mode"` // Speak assistant replies
	Player    string `yaml:"player"`     // Audio player command (default: aplay)

	// Directory the file manager exports virtual files into.
	WorkspaceDir string `yaml:"workspace_dir"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Name:    "geminios",
		Version: "2.1.0",
		LLM:     defaultLLM(),
		Store:   defaultStore(),
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
		UX: UXConfig{
			Theme:  "dark",
			Player: "aplay",
		},
	}
}

// BaseDir returns the Gemini OS state directory (~/.geminios), honoring
// GEMINIOS_HOME for tests and sandboxed deployments.
func BaseDir() string {
	if dir := os.Getenv("GEMINIOS_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".geminios"
	}
	return filepath.Join(home, ".geminios")
}

// Load reads the config file, applies defaults for missing sections and
// environment overrides. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path := filepath.Join(BaseDir(), "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the config back to <base>/config.yaml.
func Save(cfg Config) error {
	base := BaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(base, "config.yaml"), data, 0644)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINIOS_STORE"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Store.SupabaseURL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		cfg.Store.SupabaseKey = v
	}
	if v := os.Getenv("GEMINIOS_DEBUG"); v == "1" || v == "true" {
		cfg.Logging.DebugMode = true
	}
}
