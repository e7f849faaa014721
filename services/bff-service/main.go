package main

import (
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/clients"
	"github.com/Khizarkk7/storefront-backend/services/bff-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/bff-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/bff-service/services"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
)

const serviceName = "bff-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	bff := services.NewBFFService(
		clients.NewUpstreams(cfg.Upstreams, cfg.RequestTimeout),
		cfg.SectionTimeout,
		logger,
	)

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterRoutes(r, controllers.NewBFFController(bff))

	server.Run(cfg.Port, r, logger)
}
