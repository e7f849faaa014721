package main

import (
	"github.com/Khizarkk7/storefront-backend/services/common/config"
)

// Config holds all configuration for the inventory-service.
type Config struct {
	Port          string
	StockTable    string
	HistoryTable  string
	CreateTables  bool
	EventTopicARN string
}

func LoadConfig() (*Config, error) {
	return &Config{
		Port:          config.GetEnv("PORT", "8084"),
		StockTable:    config.GetEnv("DDB_TABLE_STOCK", "Stock"),
		HistoryTable:  config.GetEnv("DDB_TABLE_STOCK_HISTORY", "StockHistory"),
		CreateTables:  config.GetEnvBool("DDB_CREATE_TABLES", false),
		EventTopicARN: config.GetEnv("INVENTORY_SNS_TOPIC_ARN", ""),
	}, nil
}
