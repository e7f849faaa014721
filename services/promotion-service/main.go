package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/models"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/services"
)

const serviceName = "promotion-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.PromoCode{}, &models.Redemption{})
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	promoService := services.NewPromoService(repository.NewGormPromoRepository(db), metrics, logger)
	if cfg.SeedPromos {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := promoService.SeedDefaults(seedCtx); err != nil {
			logger.Warn("Promo seed failed", zap.Error(err))
		}
		cancel()
	}

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterPromoRoutes(r, controllers.NewPromoController(promoService))

	server.Run(cfg.Port, r, logger, func() {
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}
