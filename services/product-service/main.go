package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/cache"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/product-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/product-service/database"
	"github.com/Khizarkk7/storefront-backend/services/product-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/product-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/product-service/services"
)

const serviceName = "product-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	mongoClient, db, err := database.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	productRepo := repository.NewMongoProductRepository(db)
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := productRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure product indexes", zap.Error(err))
	}
	cancel()

	// A missing Redis only disables list caching.
	rdb, err := cache.NewRedisClient(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, product list cache disabled", zap.Error(err))
	}
	listCache := cache.NewJSONCache(rdb, "products:", cfg.ListCacheTTL)

	awsCfg, err := awspkg.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}
	store := awspkg.NewObjectStore(awsCfg, cfg.S3Bucket, cfg.AssetBaseURL)

	productService := services.NewProductService(
		productRepo,
		store,
		listCache,
		services.NewInventoryClient(cfg.InventoryURL),
		metrics,
		logger,
	)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if cfg.StockQueueURL != "" {
		consumer := awspkg.NewSQSConsumer(awsCfg, cfg.StockQueueURL, logger)
		go consumer.Start(consumerCtx, services.StockEventHandler(productService, logger))
	} else {
		logger.Warn("PRODUCT_STOCK_QUEUE_URL not set, stock events will not be consumed")
	}

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterProductRoutes(r, controllers.NewProductController(productService))

	server.Run(cfg.Port, r, logger, stopConsumer, func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := database.DisconnectMongo(mongoClient); err != nil {
			logger.Error("MongoDB disconnect error", zap.Error(err))
		}
	})
}
