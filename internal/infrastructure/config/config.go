package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// SettingsFileEnv names the environment variable pointing at an optional
// settings file (.toml, .yaml, .yml or .json).
const SettingsFileEnv = "SETTINGS_FILE"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Files     FilesConfig
	Idle      IdleConfig
	Auth      AuthConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string `envconfig:"PORT"`
	Host     string `envconfig:"HOST"`
	WebUIDir string `envconfig:"WEBUI_DIR"`
}

// FilesConfig holds sandbox and transfer configuration.
type FilesConfig struct {
	// BaseDir is the sandbox root. Blank means the user's home directory.
	BaseDir string `envconfig:"BASE_DIR"`
	// ChunkSize is the read size for streamed downloads, in bytes.
	ChunkSize int `envconfig:"CHUNK_SIZE"`
	// MountPatterns are extra glob patterns for external mount roots,
	// e.g. "/run/media/*".
	MountPatterns []string `envconfig:"MOUNT_PATTERNS"`
	// SanitizeHTML strips active content from inline HTML previews.
	SanitizeHTML bool `envconfig:"SANITIZE_HTML"`
}

// IdleConfig holds inactivity shutdown configuration.
type IdleConfig struct {
	Enabled bool          `envconfig:"IDLE_ENABLED"`
	Timeout time.Duration `envconfig:"IDLE_TIMEOUT"`
	Tick    time.Duration `envconfig:"IDLE_TICK"`
}

// AuthConfig holds login configuration.
type AuthConfig struct {
	Enabled      bool   `envconfig:"AUTH_ENABLED"`
	Username     string `envconfig:"AUTH_USERNAME"`
	PasswordHash string `envconfig:"AUTH_PASSWORD_HASH"`
	MaxAttempts  int    `envconfig:"AUTH_MAX_ATTEMPTS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL"`
	Development bool   `envconfig:"LOG_DEV"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED"`
}

// Load builds the configuration: defaults, then the settings file named by
// SETTINGS_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(SettingsFileEnv); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load settings file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8082",
			Host: "0.0.0.0",
		},
		Files: FilesConfig{
			ChunkSize:    64 * 1024,
			SanitizeHTML: true,
		},
		Idle: IdleConfig{
			Enabled: true,
			Timeout: 10 * time.Minute,
			Tick:    5 * time.Second,
		},
		Auth: AuthConfig{
			Enabled:     true,
			Username:    "admin",
			MaxAttempts: 10,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if c.Files.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %d", c.Files.ChunkSize))
	}
	if c.Idle.Enabled {
		if c.Idle.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("idle timeout must be positive, got %s", c.Idle.Timeout))
		}
		if c.Idle.Tick <= 0 {
			errs = append(errs, fmt.Errorf("idle tick must be positive, got %s", c.Idle.Tick))
		}
	}
	if c.Auth.Enabled && c.Auth.Username == "" {
		errs = append(errs, errors.New("auth username is required when auth is enabled"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
