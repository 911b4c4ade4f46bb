package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"

	"bingo/models"
)

// Config holds all application configuration.
type Config struct {
	// Database configuration
	DatabaseURL string `env:"DATABASE_URL"`

	// SizeTieBand selects the size banding: "10-11" (tie on sums 10 and 11)
	// or "11" (tie on sum 11 only).
	SizeTieBand string `env:"SIZE_TIE_BAND" envDefault:"10-11"`

	// MetricsAddr is the listen address for the Prometheus exporter.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// DrawPollInterval is how often the draw loop checks for due games.
	DrawPollInterval time.Duration `env:"DRAW_POLL_INTERVAL" envDefault:"10s"`

	// Environment is "development", "production" or "test".
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance.
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

func load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.SizeTieBand {
	case string(models.SizeBandingWideTie), string(models.SizeBandingNarrowTie):
	default:
		return nil, fmt.Errorf("SIZE_TIE_BAND must be %q or %q, got %q",
			models.SizeBandingWideTie, models.SizeBandingNarrowTie, cfg.SizeTieBand)
	}

	if cfg.Environment != "test" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// SizeBanding returns the configured size banding.
func (c *Config) SizeBanding() models.SizeBanding {
	return models.SizeBanding(c.SizeTieBand)
}
