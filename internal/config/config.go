// Package config provides configuration management for the slip tracker.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	EventFeed EventFeedConfig `mapstructure:"event_feed" validate:"required"`
	Ingest    IngestConfig    `mapstructure:"ingest" validate:"required"`
	Matcher   MatcherConfig   `mapstructure:"matcher" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// EventFeedConfig represents the sports-data provider configuration
type EventFeedConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL          string  `mapstructure:"stream_url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// IngestConfig tunes the slip ingest pipeline
type IngestConfig struct {
	MinRouteScore    int     `mapstructure:"min_route_score" validate:"gte=0"`
	MinLegConfidence float64 `mapstructure:"min_leg_confidence" validate:"gte=0,lte=1"`
	SegmentLookahead int     `mapstructure:"segment_lookahead" validate:"gte=0"`
}

// MatcherConfig tunes event matching and the recurring refresh pass
type MatcherConfig struct {
	RefreshSchedule   string  `mapstructure:"refresh_schedule" validate:"required"` // cron expression
	MatchThreshold    float64 `mapstructure:"match_threshold" validate:"required,gt=0,lte=1"`
	MaxAttempts       int     `mapstructure:"max_attempts" validate:"required,gt=0"`
	WindowBeforeHours int     `mapstructure:"window_before_hours" validate:"required,gt=0"`
	WindowAfterHours  int     `mapstructure:"window_after_hours" validate:"required,gt=0"`
	// StakeSource decides which stake settles a slip when the stated total
	// and the summed leg stakes disagree: the slip-level figure or the legs.
	StakeSource string `mapstructure:"stake_source" validate:"required,oneof=slip legs"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedTimeout returns the feed request timeout as a duration
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.EventFeed.TimeoutSeconds) * time.Second
}

// FeedCacheTTL returns the scoreboard cache TTL as a duration
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.EventFeed.CacheTTLSeconds) * time.Second
}

// MatchWindowBefore returns the event query window before ingestion
func (c *Config) MatchWindowBefore() time.Duration {
	return time.Duration(c.Matcher.WindowBeforeHours) * time.Hour
}

// MatchWindowAfter returns the event query window after ingestion
func (c *Config) MatchWindowAfter() time.Duration {
	return time.Duration(c.Matcher.WindowAfterHours) * time.Hour
}
