package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/config"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/services"
	"github.com/Khizarkk7/storefront-backend/services/common/cache"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
)

const serviceName = "cart-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg := config.Load()

	// Unlike the catalogue cache, carts live in Redis: no Redis, no service.
	rdb, err := cache.NewRedisClient(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("Redis connection failed", zap.Error(err))
	}

	cartService := services.NewCartService(
		repository.NewCartRepository(rdb, cfg.CartTTL),
		services.NewOrderClient(cfg.OrderURL, cfg.OrderTimeout),
		metrics,
		cfg.IdempotencyTTL,
		logger,
	)

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterCartRoutes(r, controllers.NewCartController(cartService))

	server.Run(cfg.Port, r, logger, func() { _ = rdb.Close() })
}
