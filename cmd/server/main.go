package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/filedeck/internal/infrastructure/config"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment and the settings file.
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Bind address")
	flag.StringVar(&cfg.Files.BaseDir, "base-dir", cfg.Files.BaseDir, "Root directory exposed to clients")
	flag.StringVar(&cfg.Server.WebUIDir, "webui", cfg.Server.WebUIDir, "Directory of the static web UI")
	flag.DurationVar(&cfg.Idle.Timeout, "idle-timeout", cfg.Idle.Timeout, "Shut down after this long without requests")
	flag.BoolVar(&cfg.Idle.Enabled, "idle", cfg.Idle.Enabled, "Enable idle shutdown")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	if cfg.Logging.Development && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		if errors.Is(err, server.ErrPortInUse) {
			log.Fatalf("Port %s is already in use, pick another with -port", cfg.Server.Port)
		}
		log.Fatalf("Failed to start server: %v", err)
	}

	// Wait for shutdown signal or idle shutdown
	select {
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
	case <-srv.Done():
		log.Println("Server stopped after inactivity")
	}

	closeDone := make(chan error, 1)
	go func() { closeDone <- srv.Close() }()
	select {
	case err := <-closeDone:
		if err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case <-time.After(15 * time.Second):
		log.Println("Shutdown timed out")
	}
}
