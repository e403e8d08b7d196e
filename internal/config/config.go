package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	AppEnv string

	StoreDriver string
	StorePath   string
	DBURL       string

	DeliveryFee decimal.Decimal

	JWTSecret  string
	SessionTTL time.Duration

	MirrorRate  float64
	MirrorBurst int
}

// Load reads the environment (and an optional .env file) into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      getenv("APP_ENV", "development"),
		StoreDriver: getenv("STORE_DRIVER", DriverFile),
		StorePath:   getenv("STORE_PATH", "./data/storefront.json"),
		DBURL:       os.Getenv("DB_URL"),
		JWTSecret:   getenv("JWT_SECRET", "eggcelent-dev-secret"),
	}

	var err error
	if cfg.DeliveryFee, err = decimal.NewFromString(getenv("DELIVERY_FEE", "50")); err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_FEE: %w", err)
	}
	if cfg.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("invalid DELIVERY_FEE: must not be negative")
	}

	if cfg.SessionTTL, err = time.ParseDuration(getenv("SESSION_TTL", "720h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	if cfg.MirrorRate, err = strconv.ParseFloat(getenv("MIRROR_RATE", "20"), 64); err != nil || cfg.MirrorRate <= 0 {
		return nil, fmt.Errorf("invalid MIRROR_RATE %q", os.Getenv("MIRROR_RATE"))
	}
	if cfg.MirrorBurst, err = strconv.Atoi(getenv("MIRROR_BURST", "5")); err != nil || cfg.MirrorBurst < 1 {
		return nil, fmt.Errorf("invalid MIRROR_BURST %q", os.Getenv("MIRROR_BURST"))
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverFile:
	case DriverPostgres:
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required for the %s store", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
