package main

import (
	"fmt"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
)

// Config holds all configuration for the shop service.
type Config struct {
	Port           string
	Postgres       database.PostgresConfig
	RedisURL       string
	PublicCacheTTL time.Duration
	S3Bucket       string
	AssetBaseURL   string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:           config.GetEnv("PORT", "8088"),
		Postgres:       config.Postgres(),
		RedisURL:       config.GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		PublicCacheTTL: config.GetEnvDuration("SHOP_CACHE_TTL", 10*time.Minute),
		S3Bucket:       config.GetEnv("S3_BUCKET", ""),
		AssetBaseURL:   config.GetEnv("ASSET_BASE_URL", ""),
	}
	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	return cfg, nil
}
