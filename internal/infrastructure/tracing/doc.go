/*
Package tracing provides lightweight request tracing for debugging production issues.

# Overview

Every HTTP request gets a span whose trace ID is taken from the X-Trace-ID
header or freshly generated. The IDs are echoed in the response headers and
stored in the request context so file operations can log with the same
trace ID.

# Usage

	tracer := tracing.New("filedeck", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// inside a handler
	tracing.Logger(c.Request.Context(), logger).Info("zip assembled")

# Trace Format

- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

Completed spans are logged asynchronously from a buffered channel (1000
spans); successful spans at debug level, failed ones at warn.
*/
package tracing
