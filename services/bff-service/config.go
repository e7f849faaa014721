package main

import (
	"fmt"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/clients"
	"github.com/Khizarkk7/storefront-backend/services/common/config"
)

type Config struct {
	Port           string
	Upstreams      clients.URLs
	RequestTimeout time.Duration
	SectionTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: config.GetEnv("PORT", "8091"),
		Upstreams: clients.URLs{
			Shop:      config.GetEnv("SHOP_SERVICE_URL", "http://shop-service:8088"),
			Product:   config.GetEnv("PRODUCT_SERVICE_URL", "http://product-service:8082"),
			User:      config.GetEnv("USER_SERVICE_URL", "http://user-service:8085"),
			Order:     config.GetEnv("ORDER_SERVICE_URL", "http://order-service:8083"),
			Inventory: config.GetEnv("INVENTORY_SERVICE_URL", "http://inventory-service:8084"),
		},
		RequestTimeout: config.GetEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		SectionTimeout: config.GetEnvDuration("DASHBOARD_SECTION_TIMEOUT", 5*time.Second),
	}
	if cfg.SectionTimeout <= 0 || cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT and DASHBOARD_SECTION_TIMEOUT must be positive")
	}
	return cfg, nil
}
