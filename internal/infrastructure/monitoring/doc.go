/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the file
server, tracking HTTP requests, file operations, transfer volume, mount
enumeration and idle shutdowns. Each Metrics value owns its registry.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Count streamed bytes
	metrics.AddBytes(monitoring.DirectionDownload, n)

	// Time operations
	timer := monitoring.NewTimer(metrics, "copy")
	err := svc.Copy(ctx, src, dst, false)
	timer.Stop(err)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
