package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	ddbpkg "github.com/Khizarkk7/storefront-backend/pkg/dynamodb"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/services"
)

const serviceName = "inventory-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}
	ddbClient := ddbpkg.NewClientFromConfig(awsCfg)

	inventoryRepo := repository.NewDynamoInventoryRepository(ddbClient, cfg.StockTable, cfg.HistoryTable)
	if cfg.CreateTables {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := inventoryRepo.EnsureTables(ctx); err != nil {
			logger.Fatal("Failed to create DynamoDB tables", zap.Error(err))
		}
		cancel()
	}

	sns, err := awspkg.PublisherFor(context.Background(), cfg.EventTopicARN)
	if err != nil {
		logger.Fatal("Failed to create SNS publisher", zap.Error(err))
	}
	publisher := events.NewPublisher(sns, cfg.EventTopicARN, logger)

	inventoryService := services.NewInventoryService(inventoryRepo, publisher, metrics, logger)

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterRoutes(r, controllers.NewInventoryController(inventoryService))

	server.Run(cfg.Port, r, logger)
}
