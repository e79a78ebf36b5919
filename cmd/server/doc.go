// Package main is the entry point of the filedeck file server.
//
// The server exposes one directory tree, plus mounted external drives, over
// a cookie-authenticated JSON and streaming HTTP API, and can serve a static
// web UI next to it. It stops itself after a period without requests.
//
// Configuration, lowest precedence first:
//   - Built-in defaults
//   - Settings file named by SETTINGS_FILE (.toml, .yaml or .json)
//   - Environment variables (PORT, BASE_DIR, IDLE_TIMEOUT, ...)
//   - CLI flags
//
// Usage:
//
//	./server -port 8082 -base-dir /home/deck
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
