package config

import (
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
)

type Config struct {
	Port           string
	RedisURL       string
	CartTTL        time.Duration
	OrderURL       string
	OrderTimeout   time.Duration
	IdempotencyTTL time.Duration
}

func Load() Config {
	return Config{
		Port:           config.GetEnv("PORT", "8086"),
		RedisURL:       config.GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartTTL:        config.GetEnvDuration("CART_TTL", 7*24*time.Hour),
		OrderURL:       config.GetEnv("ORDER_SERVICE_URL", "http://localhost:8083"),
		OrderTimeout:   config.GetEnvDuration("ORDER_SERVICE_TIMEOUT", 15*time.Second),
		IdempotencyTTL: config.GetEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}
