// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Every component receives a *zap.Logger (usually via Component) and logs
// with structured fields rather than formatted strings.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	fsLog := logger.Component(logging.ComponentFilesystem)
//	fsLog.Info("Root resolved", zap.String("root", root))
package logging
