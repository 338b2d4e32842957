package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lexiscan/lexiscan/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  name: lexiscan-test
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Name != "lexiscan-test" {
		t.Errorf("Service.Name = %q, want lexiscan-test", cfg.Service.Name)
	}
	if cfg.Service.Port != 8074 {
		t.Errorf("Service.Port = %d, want default 8074", cfg.Service.Port)
	}
	if cfg.Scoring.Concurrency != 10 {
		t.Errorf("Scoring.Concurrency = %d, want default 10", cfg.Scoring.Concurrency)
	}
	if cfg.Scoring.DefaultSensitivity != 0.5 {
		t.Errorf("Scoring.DefaultSensitivity = %v, want default 0.5", cfg.Scoring.DefaultSensitivity)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want default sqlite3", cfg.Database.Driver)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled = true, want false by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json defaults", cfg.Logging)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
  debug: true
scoring:
  concurrency: 32
  batch_limit: 250
  profile_dirs:
    - /etc/lexiscan/profiles
database:
  enabled: true
  driver: postgres
  dsn: "host=db user=lexiscan dbname=lexiscan sslmode=disable"
logging:
  level: debug
  format: console
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Port != 9000 || !cfg.Service.Debug {
		t.Errorf("Service = %+v, want port 9000 debug true", cfg.Service)
	}
	if cfg.Scoring.Concurrency != 32 || cfg.Scoring.BatchLimit != 250 {
		t.Errorf("Scoring = %+v, want concurrency 32 batch_limit 250", cfg.Scoring)
	}
	if len(cfg.Scoring.ProfileDirs) != 1 || cfg.Scoring.ProfileDirs[0] != "/etc/lexiscan/profiles" {
		t.Errorf("ProfileDirs = %v", cfg.Scoring.ProfileDirs)
	}
	if !cfg.Database.Enabled || cfg.Database.Driver != "postgres" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
logging:
  level: warn
`)

	t.Setenv("LEXISCAN_PORT", "7777")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LEXISCAN_SENSITIVITY", "0.8")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.Port != 7777 {
		t.Errorf("Service.Port = %d, want env override 7777", cfg.Service.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want env override debug", cfg.Logging.Level)
	}
	if cfg.Scoring.DefaultSensitivity != 0.8 {
		t.Errorf("DefaultSensitivity = %v, want env override 0.8", cfg.Scoring.DefaultSensitivity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("Load succeeded for a missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Service.Name != "lexiscan" {
		t.Errorf("Service.Name = %q, want lexiscan", cfg.Service.Name)
	}
	if cfg.Scoring.RowsPerSecond != 100 {
		t.Errorf("RowsPerSecond = %d, want 100", cfg.Scoring.RowsPerSecond)
	}
}

func TestGetConfigPath(t *testing.T) {
	if got := config.GetConfigPath("fallback.yml"); got != "fallback.yml" {
		t.Errorf("GetConfigPath = %q, want fallback.yml", got)
	}
	t.Setenv("CONFIG_PATH", "/etc/lexiscan/config.yml")
	if got := config.GetConfigPath("fallback.yml"); got != "/etc/lexiscan/config.yml" {
		t.Errorf("GetConfigPath = %q, want env value", got)
	}
}
