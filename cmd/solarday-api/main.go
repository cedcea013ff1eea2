package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/solar-day-service/internal/api/http"
	"github.com/i474232898/solar-day-service/internal/config"
	"github.com/i474232898/solar-day-service/internal/logging"
	"github.com/i474232898/solar-day-service/internal/observability"
	"github.com/i474232898/solar-day-service/internal/scheduler"
	"github.com/i474232898/solar-day-service/internal/solarday"
	"github.com/i474232898/solar-day-service/internal/solarday/sunrisesunset"
	"github.com/i474232898/solar-day-service/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx := context.Background()

	// Repository: Postgres when configured, in-memory otherwise.
	var repo solarday.Repository
	if cfg.DatabaseURL != "" {
		pg, err := store.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
		repo = pg
	} else {
		logger.Warn().Msg("DATABASE_URL not set; using in-memory store")
		repo = store.NewMemoryStore()
	}

	// Location the solar times are computed for.
	lat, lon, err := cfg.ResolveCoordinates()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve location coordinates")
	}
	logger.Info().Float64("lat", lat).Float64("lon", lon).Msg("solar location resolved")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := sunrisesunset.New(httpClient, cfg.SolarAPIBaseURL, lat, lon, metrics, logger)

	// Core service orchestrating repository and client.
	service := solarday.NewService(repo, client, cfg.Timezone, metrics, logger)

	// Scheduler that keeps today's solar times fresh.
	sched := scheduler.New(service, cfg.RefreshInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "solar-day-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "solar-day-service",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}
