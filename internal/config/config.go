package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-field/internal/weather"
)

type AppConfig struct {
	// RebuildInterval controls how often every region's field is rebuilt.
	RebuildInterval time.Duration

	// RegionsFile is the YAML file describing the regions to serve.
	RegionsFile string

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per region (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Source resilience.
	SourceRateLimit  float64 // builds per second per source
	SourceMaxRetries int

	// Units readings are displayed in unless a request overrides them.
	Units weather.Units

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	// Rebuild interval: default 1 hour.
	interval, err := time.ParseDuration(getenvDefault("REBUILD_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REBUILD_INTERVAL: %w", err)
	}
	cfg.RebuildInterval = interval

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 24) // a day of hourly rebuilds

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.RegionsFile = getenvDefault("REGIONS_FILE", "regions.yaml")
	cfg.SourceRateLimit = getenvFloat("SOURCE_RATE_LIMIT", 1)
	cfg.SourceMaxRetries = getenvInt("SOURCE_MAX_RETRIES", 3)

	cfg.Units = weather.DefaultUnits()
	if cfg.Units.AirTemp, err = weather.ParseTempUnit(getenvDefault("DISPLAY_AIR_TEMP_UNIT", string(cfg.Units.AirTemp))); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_AIR_TEMP_UNIT: %w", err)
	}
	if cfg.Units.WindSpeed, err = weather.ParseSpeedUnit(getenvDefault("DISPLAY_WIND_SPEED_UNIT", string(cfg.Units.WindSpeed))); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_WIND_SPEED_UNIT: %w", err)
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("INFO: ignoring invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil && f > 0 {
			return f
		}
		log.Printf("INFO: ignoring invalid %s=%q, using %v", key, v, def)
	}
	return def
}
