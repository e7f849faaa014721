package main

import (
	"context"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/order-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
	repositories "github.com/Khizarkk7/storefront-backend/services/order-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/order-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/order-service/services"
)

const serviceName = "order-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.Order{}, &models.OrderItem{}, &models.OrderStatusHistory{})
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	sns, err := awspkg.PublisherFor(context.Background(), cfg.OrderTopicARN)
	if err != nil {
		logger.Fatal("SNS init failed", zap.Error(err))
	}

	orderService := services.NewOrderService(
		repositories.NewGormOrderRepository(db),
		services.NewCatalogClient(cfg.ProductServiceURL, cfg.UpstreamTimeout),
		services.NewInventoryClient(cfg.InventoryServiceURL, cfg.UpstreamTimeout),
		services.NewPromotionClient(cfg.PromotionServiceURL, cfg.UpstreamTimeout),
		cfg.Pricing,
		events.NewPublisher(sns, cfg.OrderTopicARN, logger),
		metrics,
		logger,
	)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if cfg.PaymentQueueURL != "" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(err))
		}
		consumer := awspkg.NewSQSConsumer(awsCfg, cfg.PaymentQueueURL, logger)
		go consumer.Start(consumerCtx, services.PaymentEventHandler(orderService, logger))
	} else {
		logger.Warn("PAYMENT_EVENTS_QUEUE_URL not set, payment events will not be consumed")
	}

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterOrderRoutes(r, controllers.NewOrderController(orderService))

	server.Run(cfg.Port, r, logger, stopConsumer, func() {
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}
