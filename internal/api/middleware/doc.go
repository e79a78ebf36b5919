// Package middleware provides the gin middleware stack of the file server.
//
// Order matters. The server installs:
//   - Recovery: panic recovery with a JSON 500
//   - Activity: in-flight request accounting for the idle watcher
//   - CORS: cross-origin access for a separately served web UI
//   - RateLimit: per-IP token bucket
//   - RequireSession: cookie session check on /api routes
//   - ErrorLogger: one log line per error attached by a handler
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.Activity(tracker))
//	router.Use(middleware.RequireSession(authProvider))
package middleware
