// Package config loads and validates the gateway configuration.
//
// DESIGN: Configuration comes from one YAML document with ${VAR} and
// ${VAR:-default} expansion, so API keys live in the environment (or .env)
// and everything else is explicit in the file. Load once at startup, then
// pass the *Config to constructors; nothing reads the environment later.
//
// FILES:
//   - config.go:     Root Config struct, Load(), Validate()
//   - providers.go:  Provider endpoints and API keys
//   - assistant.go:  Assistant run settings (retry, polling)
//   - monitoring.go: Logging and alert settings
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the gateway.
type Config struct {
	Server     ServerConfig     `yaml:"server"`     // HTTP server settings
	Providers  ProvidersConfig  `yaml:"providers"`  // Upstream endpoints and keys
	Assistant  AssistantConfig  `yaml:"assistant"`  // Assistant run choreography
	Monitoring MonitoringConfig `yaml:"monitoring"` // Logging and alerts
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // Port to listen on
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // Max time to read request
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // Max time to write response
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period on SIGTERM
	CORSOrigins     []string      `yaml:"cors_origins"`     // Allowed browser origins
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults expands environment variables with support for default values.
// Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load reads configuration from a YAML file.
// Returns an error if the file doesn't exist or is invalid.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes.
// Supports ${VAR:-default} env var expansion, defaults, and validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills tuning values that are safe to omit.
// API keys and identifiers are never defaulted.
func (c *Config) applyDefaults() {
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	c.Providers.applyDefaults()
	c.Assistant.applyDefaults()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ReadTimeout == 0 {
		return fmt.Errorf("server.read_timeout is required")
	}
	if c.Server.WriteTimeout == 0 {
		return fmt.Errorf("server.write_timeout is required")
	}

	if err := c.Providers.Validate(); err != nil {
		return err
	}
	if err := c.Assistant.Validate(); err != nil {
		return err
	}

	// A run can't be allowed to poll longer than the server will wait to write.
	if c.Assistant.Poll.Timeout >= c.Server.WriteTimeout {
		return fmt.Errorf("assistant.poll.timeout (%s) must be shorter than server.write_timeout (%s)",
			c.Assistant.Poll.Timeout, c.Server.WriteTimeout)
	}

	return nil
}
