package main

import (
	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
)

// Config holds all configuration for the user service.
type Config struct {
	Port     string
	Postgres database.PostgresConfig
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:     config.GetEnv("PORT", "8085"),
		Postgres: config.Postgres(),
	}
	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
