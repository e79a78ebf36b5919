// Package config provides 12-factor configuration management for the filedeck server.
//
// Configuration is layered: built-in defaults, then an optional settings file
// named by SETTINGS_FILE, then environment variables. CLI flags in cmd/server
// override the result.
//
// Configuration Sections:
//   - Server: HTTP listener and static web UI
//   - Files: sandbox root, chunk size, external mount patterns
//   - Idle: inactivity shutdown
//   - Auth: login credentials and lockout
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Serving %s on %s\n", cfg.Files.BaseDir, cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, WEBUI_DIR, BASE_DIR, CHUNK_SIZE, MOUNT_PATTERNS, SANITIZE_HTML
//   - IDLE_ENABLED, IDLE_TIMEOUT, IDLE_TICK
//   - AUTH_ENABLED, AUTH_USERNAME, AUTH_PASSWORD_HASH, AUTH_MAX_ATTEMPTS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
