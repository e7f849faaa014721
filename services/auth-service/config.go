package main

import (
	"fmt"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
)

// Config holds all configuration for the auth service.
type Config struct {
	Port          string
	Postgres      database.PostgresConfig
	JWTSecret     string
	CookieDomain  string
	CookieSecure  bool
	AuthRateLimit int
	SNSTopicARN   string
}

// LoadConfig reads the environment (already overlaid with Secrets Manager
// values by server.Bootstrap).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          config.GetEnv("PORT", "8081"),
		Postgres:      config.Postgres(),
		JWTSecret:     config.GetEnv("JWT_SECRET", ""),
		CookieDomain:  config.GetEnv("COOKIE_DOMAIN", ""),
		CookieSecure:  config.GetEnvBool("COOKIE_SECURE", false),
		AuthRateLimit: config.GetEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		SNSTopicARN:   config.GetEnv("AUTH_SNS_TOPIC_ARN", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
