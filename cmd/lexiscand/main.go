// Command lexiscand runs the lexiscan scoring service over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexiscan/lexiscan/internal/bootstrap"
	"github.com/lexiscan/lexiscan/internal/config"
	"github.com/lexiscan/lexiscan/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lexiscand: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.GetConfigPath("config.yml")

	var cfg *config.Config
	if _, err := os.Stat(cfgPath); err == nil {
		loaded, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			return fmt.Errorf("load config: %w", loadErr)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	ctx := context.Background()
	components, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	log := components.Logger
	log.Info("Starting lexiscan service",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Int("detectors", components.Registry.Len()),
		logger.Bool("database", components.Database != nil),
	)

	serverErrors := components.Server.StartAsync()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	}

	if err := components.Server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Service stopped")
	return nil
}
