package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
)

// LoadDotEnv loads .env when present; real environment variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplySecrets copies the JSON secret named by AWS_SECRET_NAME into the
// environment when AWS_USE_SECRETS=true, so every later GetEnv sees it.
func ApplySecrets(ctx context.Context) error {
	return awspkg.OverrideFromSecret(ctx,
		GetEnvBool("AWS_USE_SECRETS", false),
		GetEnv("AWS_SECRET_NAME", ""),
		func(k, v string) { _ = os.Setenv(k, v) },
	)
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func GetEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(GetEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

// GetEnvList splits a comma separated value, dropping empty entries.
func GetEnvList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(GetEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Postgres reads the shared POSTGRES_* variables.
func Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:     GetEnv("POSTGRES_HOST", "localhost"),
		Port:     GetEnv("POSTGRES_PORT", "5432"),
		User:     GetEnv("POSTGRES_USER", ""),
		Password: GetEnv("POSTGRES_PASSWORD", ""),
		DBName:   GetEnv("POSTGRES_DB", ""),
		SSLMode:  GetEnv("POSTGRES_SSLMODE", "disable"),
		TimeZone: GetEnv("POSTGRES_TIMEZONE", "UTC"),
	}
}
