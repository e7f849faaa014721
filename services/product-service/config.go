package main

import (
	"fmt"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
)

// Config holds all environment variables for the product-service.
type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	RedisURL      string
	ListCacheTTL  time.Duration
	S3Bucket      string
	AssetBaseURL  string
	InventoryURL  string
	StockQueueURL string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          config.GetEnv("PORT", "8082"),
		MongoURI:      config.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       config.GetEnv("MONGO_DB", "storefront_products"),
		RedisURL:      config.GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		ListCacheTTL:  config.GetEnvDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		S3Bucket:      config.GetEnv("S3_BUCKET", ""),
		AssetBaseURL:  config.GetEnv("ASSET_BASE_URL", ""),
		InventoryURL:  config.GetEnv("INVENTORY_SERVICE_URL", "http://localhost:8084"),
		StockQueueURL: config.GetEnv("PRODUCT_STOCK_QUEUE_URL", ""),
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	return cfg, nil
}
