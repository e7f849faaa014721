package main

import (
	"fmt"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/sender"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/services"
)

const (
	smsProviderSNS    = "sns"
	smsProviderTwilio = "twilio"
	smsProviderLog    = "log"
)

type Config struct {
	Port        string
	Postgres    database.PostgresConfig
	QueueURL    string
	SMTP        sender.SMTPConfig
	SMSProvider string
	SMSSenderID string
	Twilio      sender.TwilioConfig
	Retry       services.Retry
}

func LoadConfig() (*Config, error) {
	queueURL := config.GetEnv("NOTIFICATION_SQS_QUEUE_URL", "")
	if queueURL == "" {
		queueURL = config.GetEnv("SQS_QUEUE_URL", "")
	}

	cfg := &Config{
		Port:     config.GetEnv("PORT", "8090"),
		Postgres: config.Postgres(),
		QueueURL: queueURL,
		SMTP: sender.SMTPConfig{
			Host:     config.GetEnv("SMTP_HOST", ""),
			Port:     config.GetEnv("SMTP_PORT", "587"),
			Username: config.GetEnv("SMTP_USER", ""),
			Password: config.GetEnv("SMTP_PASS", ""),
			From:     config.GetEnv("SMTP_FROM", ""),
		},
		SMSProvider: config.GetEnv("SMS_PROVIDER", smsProviderLog),
		SMSSenderID: config.GetEnv("SMS_SENDER_ID", ""),
		Twilio: sender.TwilioConfig{
			AccountSID: config.GetEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  config.GetEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: config.GetEnv("TWILIO_FROM_NUMBER", ""),
		},
		Retry: services.Retry{
			Attempts: config.GetEnvInt("SEND_ATTEMPTS", services.DefaultRetry.Attempts),
			Backoff:  config.GetEnvDuration("SEND_BACKOFF", services.DefaultRetry.Backoff),
		},
	}

	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	switch cfg.SMSProvider {
	case smsProviderSNS, smsProviderTwilio, smsProviderLog:
	default:
		return nil, fmt.Errorf("SMS_PROVIDER must be one of sns, twilio, log")
	}
	if cfg.Retry.Attempts < 1 || cfg.Retry.Backoff < 0 || cfg.Retry.Backoff > time.Minute {
		return nil, fmt.Errorf("SEND_ATTEMPTS must be >= 1 and SEND_BACKOFF within 0..1m")
	}
	return cfg, nil
}
