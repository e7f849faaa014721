package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/models"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/services"
	commonauth "github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
)

const serviceName = "auth-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// --- Database ---
	db, err := database.ConnectPostgres(cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	repo := repository.NewUserRepository(db)
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.SeedRoles(seedCtx, defaultRoles()); err != nil {
		logger.Warn("Role seed failed", zap.Error(err))
	}
	cancel()

	// --- AWS setup ---
	publisher, err := awspkg.PublisherFor(context.Background(), cfg.SNSTopicARN)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	// --- Dependency injection ---
	authService := services.NewAuthService(
		repo,
		services.NewTokenService(cfg.JWTSecret),
		events.NewPublisher(publisher, cfg.SNSTopicARN, logger),
		logger,
	)
	authController := controllers.NewAuthController(authService, controllers.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	})

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterAuthRoutes(r, authController, middleware.PerMinute(cfg.AuthRateLimit, cfg.AuthRateLimit/2+1))

	server.Run(cfg.Port, r, logger, func() {
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}

func defaultRoles() []models.Role {
	return []models.Role{
		{ID: commonauth.RoleIDSystemAdmin, Name: commonauth.RoleSystemAdmin},
		{ID: commonauth.RoleIDShopAdmin, Name: commonauth.RoleShopAdmin},
		{ID: commonauth.RoleIDCustomer, Name: commonauth.RoleCustomer},
	}
}
