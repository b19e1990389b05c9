// Package main provides the entry point for the slip tracker daemon.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/config"
	"github.com/yourusername/slip-tracker/internal/database"
	"github.com/yourusername/slip-tracker/internal/eventfeed"
	"github.com/yourusername/slip-tracker/internal/health"
	applog "github.com/yourusername/slip-tracker/internal/logger"
	"github.com/yourusername/slip-tracker/internal/matcher"
	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/repository"
	"github.com/yourusername/slip-tracker/internal/scheduler"
	"github.com/yourusername/slip-tracker/internal/tracker"
)

var version = "dev"

func main() {
	configPath := os.Getenv("SLIP_TRACKER_CONFIG")
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := applog.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     version,
	}).Info("Slip tracker starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database and repositories
	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := database.Initialize(initCtx, cfg)
	initCancel()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	slipRepo := repository.NewPostgresSlipRepository(db)
	betRepo := repository.NewPostgresTrackedBetRepository(db)

	// Event feed client
	feedClient := eventfeed.NewClient(eventfeed.Config{
		BaseURL:  cfg.EventFeed.BaseURL,
		APIKey:   cfg.EventFeed.APIKey,
		CacheTTL: cfg.FeedCacheTTL(),
		HTTP: eventfeed.HTTPClientConfig{
			Timeout:           cfg.FeedTimeout(),
			MaxRetries:        cfg.EventFeed.MaxRetries,
			RetryWaitMin:      250 * time.Millisecond,
			RetryWaitMax:      5 * time.Second,
			RateLimit:         cfg.EventFeed.RateLimitPerSecond,
			CircuitBreakerMax: 5,
			CircuitCooldown:   30 * time.Second,
		},
	}, appLog)
	defer feedClient.Close()

	// Matcher and tracker service
	m := matcher.New(feedClient, matcher.Config{
		MatchThreshold: cfg.Matcher.MatchThreshold,
		MaxAttempts:    cfg.Matcher.MaxAttempts,
		WindowBefore:   cfg.MatchWindowBefore(),
		WindowAfter:    cfg.MatchWindowAfter(),
	}, appLog)

	svc := tracker.NewService(slipRepo, betRepo, m, feedClient, tracker.Config{
		WindowBefore: cfg.MatchWindowBefore(),
		WindowAfter:  cfg.MatchWindowAfter(),
		StakeSource:  cfg.Matcher.StakeSource,
	}, appLog)

	// Metrics endpoint
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    ":" + strconv.Itoa(cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// Health server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		DB:          db,
		Feed:        feedClient,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Live score stream, optional. Deltas only invalidate the scoreboard cache;
	// the scheduled refresh pass remains the single writer.
	if cfg.EventFeed.StreamURL != "" {
		leagues := []models.League{
			models.LeagueNFL, models.LeagueNBA, models.LeagueMLB,
			models.LeagueNHL, models.LeagueUFC, models.LeagueSoccer,
		}
		stream := eventfeed.NewScoreStream(
			cfg.EventFeed.StreamURL,
			cfg.EventFeed.APIKey,
			leagues,
			func(delta eventfeed.ScoreDelta) {
				feedClient.InvalidateDay(delta.League, time.Now().UTC())
			},
			appLog,
		)
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Warn("Score stream stopped; falling back to polling only")
			}
		}()
	}

	// Settlement refresh schedule
	sched := scheduler.NewScheduler(svc, appLog)
	if err := sched.ScheduleRefresh(cfg.Matcher.RefreshSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule refresh pass")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"refresh_schedule": cfg.Matcher.RefreshSchedule,
		"match_threshold":  cfg.Matcher.MatchThreshold,
		"stream_enabled":   cfg.EventFeed.StreamURL != "",
	}).Info("Slip tracker running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error stopping metrics server")
		}
		shutdownCancel()
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error stopping health server")
	}

	appLog.Info("Slip tracker shut down")
}
