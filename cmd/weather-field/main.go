package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-field/internal/api/http"
	"github.com/i474232898/weather-field/internal/config"
	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/scheduler"
	"github.com/i474232898/weather-field/internal/service"
	"github.com/i474232898/weather-field/internal/store"
	"github.com/i474232898/weather-field/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		log.Fatalf("failed to load regions: %v", err)
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Sources with resilience (rate limit + backoff + circuit breaker).
	sources := make(map[string]service.Source, len(regions))
	for _, r := range regions {
		src, err := newSource(r, filepath.Dir(cfg.RegionsFile))
		if err != nil {
			log.Fatalf("failed to configure region %s: %v", r.Name, err)
		}

		backoff := providers.DefaultBackoff()
		backoff.MaxRetries = cfg.SourceMaxRetries
		sources[r.Name] = providers.NewRateLimitedSource(
			providers.NewResilientSource(src, backoff), cfg.SourceRateLimit, 1)
		log.Printf("INFO: region %s served by %s source", r.Name, r.Kind)
	}

	// Core service orchestrating sources and store.
	svc := service.NewService(memStore, sources)

	// Scheduler that periodically rebuilds every field.
	sched := scheduler.New(cfg.RebuildInterval, svc)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-field",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-field",
			"regions": len(regions),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, svc, cfg.Units)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// newSource builds the field source of a region. Relative forecast paths are
// resolved against the regions file directory.
func newSource(r config.RegionConfig, baseDir string) (service.Source, error) {
	switch r.Kind {
	case config.KindForecast:
		path := r.ForecastFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return providers.NewForecastSource(r.Name, providers.FileLoader{Path: path}), nil

	case config.KindDiurnal:
		cycle, err := r.Cycle()
		if err != nil {
			return nil, err
		}
		grid, err := r.BuildGrid()
		if err != nil {
			return nil, err
		}
		loc, err := r.Location()
		if err != nil {
			return nil, err
		}
		start, err := r.StartTime()
		if err != nil {
			return nil, err
		}
		order, err := field.ParseOrder(r.Order)
		if err != nil {
			return nil, err
		}

		opts := []providers.DiurnalOption{providers.WithLocation(loc), providers.WithOrder(order)}
		if r.Hours > 0 {
			opts = append(opts, providers.WithHours(r.Hours))
		}
		if !start.IsZero() {
			opts = append(opts, providers.WithStart(start))
		}
		if r.SolarHours() {
			opts = append(opts, providers.WithSolarHours())
		}
		return providers.NewDiurnalSource(r.Name, cycle, grid, opts...)
	}
	return nil, fmt.Errorf("unknown region kind %q", r.Kind)
}
