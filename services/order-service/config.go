package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/order-service/services"
)

type Config struct {
	Port                string
	Postgres            database.PostgresConfig
	ProductServiceURL   string
	InventoryServiceURL string
	PromotionServiceURL string
	UpstreamTimeout     time.Duration
	Pricing             services.Pricing
	OrderTopicARN       string
	PaymentQueueURL     string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                config.GetEnv("PORT", "8083"),
		Postgres:            config.Postgres(),
		ProductServiceURL:   config.GetEnv("PRODUCT_SERVICE_URL", "http://product-service:8082"),
		InventoryServiceURL: config.GetEnv("INVENTORY_SERVICE_URL", "http://inventory-service:8084"),
		PromotionServiceURL: config.GetEnv("PROMOTION_SERVICE_URL", "http://promotion-service:8089"),
		UpstreamTimeout:     config.GetEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		Pricing: services.Pricing{
			FreeShippingThreshold: decimal.NewFromFloat(config.GetEnvFloat("FREE_SHIPPING_THRESHOLD", 2000)),
			FlatShippingCost:      decimal.NewFromFloat(config.GetEnvFloat("FLAT_SHIPPING_COST", 200)),
			TaxRate:               decimal.NewFromFloat(config.GetEnvFloat("TAX_RATE", 0)),
		},
		OrderTopicARN:   config.GetEnv("ORDER_SNS_TOPIC_ARN", ""),
		PaymentQueueURL: config.GetEnv("PAYMENT_EVENTS_QUEUE_URL", ""),
	}

	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	if cfg.InventoryServiceURL == "" {
		return nil, fmt.Errorf("INVENTORY_SERVICE_URL is required")
	}
	if cfg.ProductServiceURL == "" {
		return nil, fmt.Errorf("PRODUCT_SERVICE_URL is required")
	}
	if cfg.Pricing.TaxRate.IsNegative() || cfg.Pricing.FlatShippingCost.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE and FLAT_SHIPPING_COST cannot be negative")
	}
	return cfg, nil
}
