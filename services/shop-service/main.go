package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/cache"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/services"
)

const serviceName = "shop-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.Shop{}, &models.Menu{}, &models.RoleMenu{})
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}

	// A missing Redis only disables the public shop cache.
	rdb, err := cache.NewRedisClient(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, public shop cache disabled", zap.Error(err))
	}
	publicCache := cache.NewJSONCache(rdb, "shop:public:", cfg.PublicCacheTTL)

	awsCfg, err := awspkg.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}
	store := awspkg.NewObjectStore(awsCfg, cfg.S3Bucket, cfg.AssetBaseURL)

	shopService := services.NewShopService(repository.NewGormShopRepository(db), store, publicCache, logger)
	menuService := services.NewMenuService(repository.NewGormMenuRepository(db), logger)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := menuService.SeedDefaults(seedCtx); err != nil {
		logger.Warn("Menu seed failed", zap.Error(err))
	}
	cancel()

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterShopRoutes(r, controllers.NewShopController(shopService, menuService))

	server.Run(cfg.Port, r, logger, func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}
