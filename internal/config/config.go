package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName        = "lexiscan"
	defaultServiceVersion     = "1.0.0"
	defaultServicePort        = 8074
	defaultConcurrency        = 10
	defaultBatchLimit         = 100
	defaultRowsPerSecond      = 100
	defaultSensitivity        = 0.5
	defaultShutdownTimeoutSec = 10
	defaultDBDriver           = "sqlite3"
	defaultDBDSN              = "lexiscan.db"
	defaultDBMaxConns         = 25
	defaultDBMaxIdleConns     = 5
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
)

// Config holds all configuration for the lexiscan service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"LEXISCAN_PORT"  yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"      yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration. The database is an optional
// supporting surface: when disabled the service runs with builtin detector
// profiles only and records no scoring history.
type DatabaseConfig struct {
	Enabled         bool          `env:"LEXISCAN_DB_ENABLED" yaml:"enabled"`
	Driver          string        `env:"LEXISCAN_DB_DRIVER"  yaml:"driver"`
	DSN             string        `env:"LEXISCAN_DB_DSN"     yaml:"dsn"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ScoringConfig holds scoring and batch settings.
type ScoringConfig struct {
	Concurrency        int      `env:"LEXISCAN_CONCURRENCY" yaml:"concurrency"`
	BatchLimit         int      `yaml:"batch_limit"`
	RowsPerSecond      int      `yaml:"rows_per_second"`
	DefaultSensitivity float64  `env:"LEXISCAN_SENSITIVITY" yaml:"default_sensitivity"`
	ProfileDirs        []string `env:"LEXISCAN_PROFILE_DIRS" yaml:"profile_dirs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path and applies defaults.
// Environment overrides always win over file values and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setScoringDefaults(&cfg.Scoring)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeoutSec * time.Second
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.DSN == "" {
		d.DSN = defaultDBDSN
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setScoringDefaults(s *ScoringConfig) {
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchLimit == 0 {
		s.BatchLimit = defaultBatchLimit
	}
	if s.RowsPerSecond == 0 {
		s.RowsPerSecond = defaultRowsPerSecond
	}
	if s.DefaultSensitivity == 0 {
		s.DefaultSensitivity = defaultSensitivity
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
