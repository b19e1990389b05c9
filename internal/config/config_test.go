package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
app:
  name: slip-tracker
  environment: development
  log_level: info

database:
  host: localhost
  port: 5432
  name: slips
  user: tracker
  password: secret
  ssl_mode: disable
  max_connections: 10

event_feed:
  base_url: https://feed.example.com/v2
  stream_url: wss://feed.example.com/v2/stream
  timeout_seconds: 10
  max_retries: 3
  rate_limit_per_second: 5
  cache_ttl_seconds: 30

ingest:
  min_route_score: 2
  min_leg_confidence: 0.2
  segment_lookahead: 2

matcher:
  refresh_schedule: "*/2 * * * *"
  match_threshold: 0.6
  max_attempts: 48
  window_before_hours: 12
  window_after_hours: 48
  stake_source: slip

metrics:
  enabled: true
  port: 9090
  path: /metrics

health:
  port: "8081"
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Name != "slip-tracker" {
		t.Errorf("expected app name 'slip-tracker', got '%s'", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Matcher.MaxAttempts != 48 {
		t.Errorf("expected max attempts 48, got %d", cfg.Matcher.MaxAttempts)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected default environment 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Matcher.MatchThreshold != 0.6 {
		t.Errorf("expected default match threshold 0.6, got %v", cfg.Matcher.MatchThreshold)
	}
	if cfg.EventFeed.CacheTTLSeconds != 30 {
		t.Errorf("expected default cache TTL 30, got %d", cfg.EventFeed.CacheTTLSeconds)
	}
}

func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")

	yaml := strings.Replace(validYAML, "password: secret", "password: ${TEST_DB_PASSWORD}", 1)
	cfg, err := Load(writeConfigFile(t, yaml))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

func TestLoadConfigEnvironmentVariableOverride(t *testing.T) {
	t.Setenv("SLIP_TRACKER_APP_NAME", "override-name")

	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.Name != "override-name" {
		t.Errorf("expected app name 'override-name' from environment, got '%s'", cfg.App.Name)
	}
}

func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

func TestValidateInvalidLogLevel(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "production"
	cfg.EventFeed.APIKey = "key"
	cfg.Database.SSLMode = "disable"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for production without SSL")
	}

	cfg.Database.SSLMode = "require"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error with SSL enabled, got %v", err)
	}
}

func TestValidateMatcherWindowOrdering(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Matcher.WindowBeforeHours = 72
	cfg.Matcher.WindowAfterHours = 12
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for inverted matcher windows")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected DSN to start with 'postgres://', got '%s'", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected DSN to carry ssl mode, got '%s'", dsn)
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "production"}}
	if !cfg.IsProduction() || cfg.IsDevelopment() || cfg.IsStaging() {
		t.Error("expected production environment checks to match")
	}

	cfg.App.Environment = "development"
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("expected development environment checks to match")
	}
}

func TestOverlaySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Password = "from-file"
	cfg.EventFeed.APIKey = "from-file"

	overlaySecretsOnConfig(cfg, &SecretsOverlay{DatabasePassword: "from-aws"})
	if cfg.Database.Password != "from-aws" {
		t.Errorf("expected database password overlay, got '%s'", cfg.Database.Password)
	}
	if cfg.EventFeed.APIKey != "from-file" {
		t.Errorf("expected API key untouched when secret empty, got '%s'", cfg.EventFeed.APIKey)
	}
}
