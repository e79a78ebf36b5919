package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// fileSettings mirrors the keys a settings file may carry. Pointer fields
// distinguish "absent" from a zero value so only present keys override.
type fileSettings struct {
	BaseDir                *string  `toml:"base_dir" yaml:"base_dir" json:"base_dir"`
	Host                   *string  `toml:"host" yaml:"host" json:"host"`
	Port                   *int     `toml:"port" yaml:"port" json:"port"`
	WebUIDir               *string  `toml:"webui_dir" yaml:"webui_dir" json:"webui_dir"`
	ShutdownTimeoutSeconds *int     `toml:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
	UserLogin              *string  `toml:"user_login" yaml:"user_login" json:"user_login"`
	PasswordHash           *string  `toml:"password_hash" yaml:"password_hash" json:"password_hash"`
	MaxLoginAttempts       *int     `toml:"max_login_attempts" yaml:"max_login_attempts" json:"max_login_attempts"`
	ChunkSize              *int     `toml:"chunk_size" yaml:"chunk_size" json:"chunk_size"`
	MountPatterns          []string `toml:"mount_patterns" yaml:"mount_patterns" json:"mount_patterns"`
}

// LoadFile overlays the settings file at path onto cfg. The format is
// chosen by extension.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fs fileSettings
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &fs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fs)
	case ".json":
		err = sonic.Unmarshal(data, &fs)
	default:
		return fmt.Errorf("unsupported settings format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	fs.apply(cfg)
	return nil
}

func (fs *fileSettings) apply(cfg *Config) {
	if fs.BaseDir != nil {
		cfg.Files.BaseDir = *fs.BaseDir
	}
	if fs.Host != nil {
		cfg.Server.Host = *fs.Host
	}
	if fs.Port != nil {
		cfg.Server.Port = strconv.Itoa(*fs.Port)
	}
	if fs.WebUIDir != nil {
		cfg.Server.WebUIDir = *fs.WebUIDir
	}
	if fs.ShutdownTimeoutSeconds != nil && *fs.ShutdownTimeoutSeconds > 0 {
		cfg.Idle.Timeout = time.Duration(*fs.ShutdownTimeoutSeconds) * time.Second
	}
	if fs.UserLogin != nil {
		cfg.Auth.Username = *fs.UserLogin
	}
	if fs.PasswordHash != nil {
		cfg.Auth.PasswordHash = *fs.PasswordHash
	}
	if fs.MaxLoginAttempts != nil {
		cfg.Auth.MaxAttempts = *fs.MaxLoginAttempts
	}
	if fs.ChunkSize != nil {
		cfg.Files.ChunkSize = *fs.ChunkSize
	}
	if fs.MountPatterns != nil {
		cfg.Files.MountPatterns = fs.MountPatterns
	}
}
