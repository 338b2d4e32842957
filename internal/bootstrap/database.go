package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lexiscan/lexiscan/internal/config"
	"github.com/lexiscan/lexiscan/internal/database"
	"github.com/lexiscan/lexiscan/internal/logger"
)

// DatabaseComponents holds the database connection and repositories.
type DatabaseComponents struct {
	DB           *sqlx.DB
	ProfilesRepo *database.ProfilesRepository
	HistoryRepo  *database.HistoryRepository
}

// SetupDatabase connects to the configured database, runs migrations and
// builds the repositories. Returns nil when the database is disabled.
func (c *Components) SetupDatabase(ctx context.Context, cfg *config.Config) (*DatabaseComponents, error) {
	if !cfg.Database.Enabled {
		c.Logger.Info("Database disabled, running with builtin detectors only")
		return nil, nil
	}

	db, err := database.Connect(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	c.Logger.Info("Database connected",
		logger.String("driver", cfg.Database.Driver),
	)

	return &DatabaseComponents{
		DB:           db,
		ProfilesRepo: database.NewProfilesRepository(db),
		HistoryRepo:  database.NewHistoryRepository(db),
	}, nil
}
