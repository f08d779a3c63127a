package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Samina configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Hosted backend (persistence + identity)
	Backend BackendConfig `yaml:"backend"`

	// AI assistant
	AI AIConfig `yaml:"ai"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig configures the remote store and identity gateway.
type BackendConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`

	// AccessToken restores an existing session at startup. Sessions are
	// never written to disk; this is the only restore path.
	AccessToken string `yaml:"access_token"`

	Timeout string `yaml:"timeout"`
}

// AIConfig configures the assistant gateway.
type AIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// LoggingConfig configures the categorized debug logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "samina",
		Version: "1.0.0",

		Backend: BackendConfig{
			Timeout: "30s",
		},

		AI: AIConfig{
			Model: "gemini-3-pro-preview",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("SAMINA_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if key := os.Getenv("SAMINA_ANON_KEY"); key != "" {
		c.Backend.AnonKey = key
	}
	if tok := os.Getenv("SAMINA_ACCESS_TOKEN"); tok != "" {
		c.Backend.AccessToken = tok
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
	if model := os.Getenv("SAMINA_AI_MODEL"); model != "" {
		c.AI.Model = model
	}
}

// GetBackendTimeout returns the backend HTTP timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend URL not configured (set backend.url or SAMINA_BACKEND_URL)")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend URL must be http(s): %s", c.Backend.URL)
	}
	if c.Backend.AnonKey == "" {
		return fmt.Errorf("backend anon key not configured (set backend.anon_key or SAMINA_ANON_KEY)")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai model not configured")
	}
	return nil
}

// HasAssistant reports whether the assistant gateway can be built.
func (c *Config) HasAssistant() bool {
	return c.AI.APIKey != ""
}

// DefaultUserConfigPath returns the default path to ~/.samina/config.yaml.
func DefaultUserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".samina", "config.yaml")
	}
	return filepath.Join(home, ".samina", "config.yaml")
}

// UserDir returns the directory holding the user config and debug logs.
func UserDir() string {
	return filepath.Dir(DefaultUserConfigPath())
}
