package main

import (
	"context"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/config"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/services"
)

const serviceName = "payment-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.Payment{})
	if err != nil {
		logger.Fatal("Failed to connect to DB", zap.Error(err))
	}

	sns, err := awspkg.PublisherFor(context.Background(), cfg.PaymentTopicARN)
	if err != nil {
		logger.Fatal("SNS init failed", zap.Error(err))
	}

	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_API_KEY not set, card payments disabled")
	}
	for name, w := range cfg.Wallets {
		if !w.Enabled() {
			logger.Warn("Wallet provider not configured", zap.String("provider", name))
		}
	}

	paymentService := services.NewPaymentService(
		repository.NewGormPaymentRepo(db),
		services.NewOrderClient(cfg.OrderServiceURL, cfg.OrderTimeout),
		services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey),
		services.Options{
			Currency:        cfg.Currency,
			PostbackBaseURL: cfg.PostbackBaseURL,
			ReturnOrigins:   cfg.ReturnOrigins,
			Wallets:         cfg.Wallets,
		},
		events.NewPublisher(sns, cfg.PaymentTopicARN, logger),
		metrics,
		logger,
	)

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterPaymentRoutes(r, controllers.NewPaymentController(paymentService))

	server.Run(cfg.Port, r, logger, func() {
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}
