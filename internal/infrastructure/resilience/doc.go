/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

This package implements the circuit breaker pattern so that a failing external
tool (the block-device listing used for mount enumeration) fails fast instead of
being spawned on every request.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Generic, context-aware Call helper
- Pluggable failure classification (cancellation is not a failure by default)
- Injectable clock for deterministic tests
- State change callbacks for logging

# Usage

	// Create a circuit breaker
	breaker := resilience.New("drives", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	// Run a call through the breaker
	mounts, err := resilience.Call(ctx, breaker, enumerator.Mounts)

# States

- Closed: Normal operation, requests pass through
- Open: Service unavailable, requests fail immediately
- Half-Open: Testing if service recovered, limited requests allowed

# Pattern

The circuit breaker transitions between states based on success/failure rates:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
