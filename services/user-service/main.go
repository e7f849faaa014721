package main

import (
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/user-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/user-service/models"
	"github.com/Khizarkk7/storefront-backend/services/user-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/user-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/user-service/services"
)

const serviceName = "user-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// The users table is migrated by auth-service as well; both agree on the schema.
	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.User{})
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}

	userService := services.NewUserService(repository.NewGormUserRepository(db), logger)
	userController := controllers.NewUserController(userService)

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterUserRoutes(r, userController)

	server.Run(cfg.Port, r, logger, func() {
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}
