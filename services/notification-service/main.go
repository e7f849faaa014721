package main

import (
	"context"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/models"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/sender"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/services"
)

const serviceName = "notification-service"

func main() {
	logger, metrics := server.Bootstrap(serviceName)
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.NotificationLog{})
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	templates, err := services.LoadTemplates()
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}

	logSender := sender.NewLogSender(logger)

	var emailSender sender.EmailSender = logSender
	if cfg.SMTP.Enabled() {
		smtpSender, err := sender.NewSMTPSender(cfg.SMTP)
		if err != nil {
			logger.Fatal("Failed to init SMTP sender", zap.Error(err))
		}
		emailSender = smtpSender
	} else {
		logger.Warn("SMTP_HOST not set, emails are only logged")
	}

	// Only fatal when SNS SMS or the queue actually needs it.
	awsCfg, awsErr := awspkg.LoadAWSConfig(context.Background())

	var smsSender sender.SMSSender = logSender
	switch cfg.SMSProvider {
	case smsProviderSNS:
		if awsErr != nil {
			logger.Fatal("Failed to load AWS config for SNS SMS", zap.Error(awsErr))
		}
		smsSender = sender.NewSNSSMSSender(awsCfg, cfg.SMSSenderID)
	case smsProviderTwilio:
		twilio, err := sender.NewTwilioSender(cfg.Twilio)
		if err != nil {
			logger.Fatal("Failed to init Twilio sender", zap.Error(err))
		}
		smsSender = twilio
	default:
		logger.Warn("SMS_PROVIDER is log, text messages are only logged")
	}

	notificationService := services.NewNotificationService(
		repository.NewNotificationRepository(db),
		emailSender,
		smsSender,
		templates,
		cfg.Retry,
		metrics,
		logger,
	)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if cfg.QueueURL != "" {
		if awsErr != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(awsErr))
		}
		consumer := awspkg.NewSQSConsumer(awsCfg, cfg.QueueURL, logger)
		go consumer.Start(consumerCtx, services.EventHandler(notificationService, logger))
	} else {
		logger.Warn("NOTIFICATION_SQS_QUEUE_URL not set, events will not be consumed")
	}

	r := server.NewRouter(serviceName, logger, metrics)
	routes.RegisterRoutes(r, controllers.NewNotificationController(notificationService))

	server.Run(cfg.Port, r, logger, stopConsumer, func() {
		if err := database.Close(db); err != nil {
			logger.Error("Database close error", zap.Error(err))
		}
	})
}
