package main

import (
	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
)

// Config holds all configuration for the promotion service.
type Config struct {
	Port       string
	Postgres   database.PostgresConfig
	SeedPromos bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:       config.GetEnv("PORT", "8089"),
		Postgres:   config.Postgres(),
		SeedPromos: config.GetEnvBool("SEED_PROMO_CODES", true),
	}
	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
