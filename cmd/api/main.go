package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"verdict-lab/internal/api"
	"verdict-lab/internal/api/handlers"
	apimiddleware "verdict-lab/internal/api/middleware"
	"verdict-lab/internal/app"
	"verdict-lab/internal/config"
	"verdict-lab/internal/domain/services"
	"verdict-lab/internal/infrastructure/cache"
	"verdict-lab/internal/streaming"
	"verdict-lab/pkg/logger"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to config file")
	flag.Parse()

	// A missing .env is fine outside local development
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.IsProduction() {
		log = logger.NewProduction()
	} else {
		log = logger.New(logger.Config{
			Level:      cfg.Logger.Level,
			Format:     cfg.Logger.Format,
			TimeFormat: cfg.Logger.TimeFormat,
		})
	}

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting verdict-lab")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var checks []handlers.ReadinessCheck

	// Redis backs alert cooldowns and rate limiting
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without alert cooldowns or rate limiting")
		} else {
			defer redisCache.Close()
			checks = append(checks, handlers.ReadinessCheck{Name: "redis", Check: redisCache.Ping})
		}
	}

	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
		} else {
			defer natsPublisher.Close()
			checks = append(checks, handlers.ReadinessCheck{Name: "nats", Check: func(context.Context) error {
				if !natsPublisher.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			}})
		}
	}

	pipeline := app.NewPipeline(cfg, log)
	stats := pipeline.Registry.Stats()
	log.Info().Int("sources", stats.Total).Int("configured", stats.Configured).Msg("analysis pipeline ready")

	var notifier services.Notifier
	if cfg.Notifications.Enabled {
		notifier = newNotifier(cfg.Notifications, redisCache, natsPublisher, log)
	}

	var limiter apimiddleware.RateLimitStore
	if redisCache != nil {
		limiter = redisCache
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("rate limiting enabled but Redis unavailable, requests will not be limited")
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Analyzer:    pipeline.Analyzer,
		Notifier:    notifier,
		Sources:     pipeline.Registry,
		Correlation: pipeline.Correlation,
		Checks:      checks,
		Version:     cfg.App.Version,
		Logger:      log,
	})
	router := api.NewRouter(*cfg, h, limiter, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("server stopped")
}

// newNotifier assembles the alert notifier from whichever sinks are available
func newNotifier(cfg config.NotificationConfig, redisCache *cache.RedisCache, natsPublisher *streaming.NATSPublisher, log *logger.Logger) *services.AlertNotifier {
	var deduper services.AlertDeduper
	if redisCache != nil {
		deduper = redisCache
	}

	var publisher services.AlertPublisher
	if natsPublisher != nil {
		publisher = streaming.NewReportPublisher(natsPublisher)
	}

	return services.NewAlertNotifier(services.AlertConfig{
		WebhookURL: cfg.WebhookURL,
		Threshold:  cfg.Threshold,
		Cooldown:   cfg.Cooldown,
		Timeout:    cfg.Timeout,
	}, deduper, publisher, log)
}
