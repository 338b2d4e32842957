// Package bootstrap assembles the lexiscan service from its parts:
// configuration, logging, telemetry, the detector registry, batch
// processing, optional storage and the HTTP server.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexiscan/lexiscan/internal/api"
	"github.com/lexiscan/lexiscan/internal/config"
	"github.com/lexiscan/lexiscan/internal/database"
	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/logger"
	"github.com/lexiscan/lexiscan/internal/logging"
	"github.com/lexiscan/lexiscan/internal/processor"
	"github.com/lexiscan/lexiscan/internal/telemetry"
)

// Components holds everything the service needs at runtime.
type Components struct {
	Config         *config.Config
	Logger         logger.Logger
	Adapter        *logging.Adapter
	Telemetry      *telemetry.Provider
	Registry       *detector.Registry
	BatchProcessor *processor.BatchProcessor
	Database       *DatabaseComponents
	Handler        *api.Handler
	Server         *api.Server
}

// New builds all service components from the given configuration.
func New(ctx context.Context, cfg *config.Config) (*Components, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	c := &Components{
		Config:    cfg,
		Logger:    log,
		Adapter:   logging.NewAdapter(log),
		Telemetry: telemetry.NewProvider(),
	}

	if err := c.setupRegistry(ctx, cfg); err != nil {
		return nil, err
	}

	c.BatchProcessor = processor.NewBatchProcessor(
		c.Registry,
		cfg.Scoring.Concurrency,
		c.Adapter,
		c.Telemetry,
	)

	c.setupServer(cfg)
	return c, nil
}

// setupRegistry compiles builtin profiles plus any profiles found in the
// configured directories and, when storage is enabled, in the database.
func (c *Components) setupRegistry(ctx context.Context, cfg *config.Config) error {
	registry, err := detector.NewRegistry(c.Logger, c.Telemetry, detector.Builtin()...)
	if err != nil {
		return fmt.Errorf("compile builtin detectors: %w", err)
	}
	c.Registry = registry

	for _, dir := range cfg.Scoring.ProfileDirs {
		if err := c.loadProfileDir(dir); err != nil {
			return err
		}
	}

	db, err := c.SetupDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	c.Database = db

	if db != nil {
		profiles, listErr := db.ProfilesRepo.ListEnabled(ctx)
		if listErr != nil {
			return fmt.Errorf("load stored profiles: %w", listErr)
		}
		for _, profile := range profiles {
			if regErr := c.Registry.Register(*profile); regErr != nil {
				c.Logger.Warn("Skipping stored profile",
					logger.String("profile", profile.Name),
					logger.Error(regErr),
				)
			}
		}
		c.Logger.Info("Stored profiles loaded", logger.Int("count", len(profiles)))
	}

	c.Telemetry.SetProfilesLoaded(c.Registry.Len())
	c.Logger.Info("Detector registry ready", logger.Int("detectors", c.Registry.Len()))
	return nil
}

func (c *Components) loadProfileDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read profile dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		profile, loadErr := detector.LoadProfile(path)
		if loadErr != nil {
			return fmt.Errorf("load profile %s: %w", path, loadErr)
		}
		if regErr := c.Registry.Register(profile); regErr != nil {
			return fmt.Errorf("register profile %s: %w", path, regErr)
		}
		c.Logger.Info("Profile loaded from file",
			logger.String("profile", profile.Name),
			logger.String("path", path),
		)
	}
	return nil
}

func (c *Components) setupServer(cfg *config.Config) {
	handler := api.NewHandler(
		c.Registry,
		c.BatchProcessor,
		repoOrNilProfiles(c.Database),
		repoOrNilHistory(c.Database),
		c.Adapter,
		cfg.Service.Name,
		cfg.Service.Version,
	)
	c.Handler = handler
	c.Server = api.NewServer(handler, api.ServerConfig{
		Port:            cfg.Service.Port,
		Debug:           cfg.Service.Debug,
		ShutdownTimeout: cfg.Service.ShutdownTimeout,
	}, c.Telemetry.Handler(), c.Logger)
}

func repoOrNilProfiles(db *DatabaseComponents) *database.ProfilesRepository {
	if db == nil {
		return nil
	}
	return db.ProfilesRepo
}

func repoOrNilHistory(db *DatabaseComponents) *database.HistoryRepository {
	if db == nil {
		return nil
	}
	return db.HistoryRepo
}

// Close releases held resources.
func (c *Components) Close() {
	if c.Database != nil && c.Database.DB != nil {
		if err := c.Database.DB.Close(); err != nil {
			c.Logger.Warn("Failed to close database", logger.Error(err))
		}
	}
}
