// Package config loads runtime settings from defaults, an optional YAML
// file, and INSIGHTSTREAM_ environment variables, in that order of
// precedence (later wins).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Mode values select how analysis runs are answered.
const (
	ModeOnline  = "ONLINE"
	ModeOffline = "OFFLINE"
)

// ModelConfig holds the language-model client settings.
type ModelConfig struct {
	Name      string        `koanf:"name"`
	APIKeyEnv string        `koanf:"api_key_env"`
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
}

// GuardConfig holds screening settings.
type GuardConfig struct {
	PackPath string `koanf:"pack_path"`
}

// SandboxConfig bounds generated-code execution.
type SandboxConfig struct {
	MaxSteps uint64        `koanf:"max_steps"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Config is the full runtime configuration.
type Config struct {
	Mode    string        `koanf:"mode"`
	Model   ModelConfig   `koanf:"model"`
	Guard   GuardConfig   `koanf:"guard"`
	Sandbox SandboxConfig `koanf:"sandbox"`
	LogPath string        `koanf:"log_path"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mode":              ModeOnline,
		"model.name":        "gemini-2.0-flash",
		"model.api_key_env": "GOOGLE_API_KEY",
		"model.base_url":    "https://generativelanguage.googleapis.com",
		"model.timeout":     30 * time.Second,
		"guard.pack_path":   "",
		"sandbox.max_steps": uint64(500000),
		"sandbox.timeout":   5 * time.Second,
		"log_path":          "insightstream_audit.jsonl",
	}
}

// Load builds a Config. path may be empty; a missing file at an explicit
// path is an error, so a typo does not silently fall back to defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// INSIGHTSTREAM_MODEL__NAME maps to model.name; a double underscore
	// separates nesting levels so api_key_env stays one key.
	err := k.Load(env.Provider("INSIGHTSTREAM_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "INSIGHTSTREAM_")
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Mode = strings.ToUpper(cfg.Mode)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Mode != ModeOnline && c.Mode != ModeOffline {
		return fmt.Errorf("config: mode must be %s or %s, got %q", ModeOnline, ModeOffline, c.Mode)
	}
	if c.Sandbox.MaxSteps == 0 {
		return fmt.Errorf("config: sandbox.max_steps must be positive")
	}
	if c.Sandbox.Timeout <= 0 {
		return fmt.Errorf("config: sandbox.timeout must be positive")
	}
	return nil
}

// APIKey resolves the model credential from the configured environment
// variable. Empty means ONLINE mode cannot run.
func (c *Config) APIKey() string {
	if c.Model.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Model.APIKeyEnv)
}
