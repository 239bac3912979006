package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageDriverFirestore = "firestore"
	StorageDriverMemory    = "memory"
)

type Config struct {
	ServerPort             string        `env:"SERVER_PORT" envDefault:"8080"`
	FirebaseProject        string        `env:"FIREBASE_PROJECT_ID"`
	ServiceAccountJSON     string        `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	ServiceAccountPath     string        `env:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	Environment            string        `env:"ENVIRONMENT" envDefault:"development"`
	StorageDriver          string        `env:"STORAGE_DRIVER" envDefault:"firestore"`
	CatalogBucket          string        `env:"CATALOG_BUCKET"`
	CatalogObject          string        `env:"CATALOG_OBJECT"`
	MatchEventWindow       time.Duration `env:"MATCH_EVENT_WINDOW" envDefault:"10s"`
	PropagationConcurrency int           `env:"PROPAGATION_CONCURRENCY" envDefault:"8"`
	ProgressRatePerMinute  int           `env:"PROGRESS_RATE_PER_MINUTE" envDefault:"30"`
	HousekeepingInterval   time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1m"`
	LogLevel               string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins         []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore storage driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MatchEventWindow <= 0 {
		return fmt.Errorf("MATCH_EVENT_WINDOW must be positive")
	}
	if c.PropagationConcurrency <= 0 {
		return fmt.Errorf("PROPAGATION_CONCURRENCY must be positive")
	}
	if c.ProgressRatePerMinute <= 0 {
		return fmt.Errorf("PROGRESS_RATE_PER_MINUTE must be positive")
	}
	if c.HousekeepingInterval <= 0 {
		return fmt.Errorf("HOUSEKEEPING_INTERVAL must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
