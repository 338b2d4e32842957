package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexiscan/lexiscan/internal/bootstrap"
	"github.com/lexiscan/lexiscan/internal/config"
	"github.com/lexiscan/lexiscan/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scoring service over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "path to config file")
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg *config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("failed to get port flag: %w", err)
	}
	if port != 0 {
		cfg.Service.Port = port
	}

	components, err := bootstrap.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	log := components.Logger
	log.Info("Starting lexiscan service",
		logger.Int("port", cfg.Service.Port),
		logger.Int("detectors", components.Registry.Len()),
	)

	serverErrors := components.Server.StartAsync()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	}

	return components.Server.Shutdown(context.Background())
}
