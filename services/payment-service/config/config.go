package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/config"
	"github.com/Khizarkk7/storefront-backend/services/common/database"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/services"
)

type Config struct {
	Port             string
	Postgres         database.PostgresConfig
	OrderServiceURL  string
	OrderTimeout     time.Duration
	StripeSecretKey  string
	StripeWebhookKey string
	Currency         string
	PostbackBaseURL  string
	ReturnOrigins    []string
	Wallets          map[string]services.WalletProvider
	PaymentTopicARN  string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             config.GetEnv("PORT", "8087"),
		Postgres:         config.Postgres(),
		OrderServiceURL:  config.GetEnv("ORDER_SERVICE_URL", "http://order-service:8083"),
		OrderTimeout:     config.GetEnvDuration("ORDER_SERVICE_TIMEOUT", 10*time.Second),
		StripeSecretKey:  config.GetEnv("STRIPE_API_KEY", ""),
		StripeWebhookKey: config.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		Currency:         strings.ToLower(config.GetEnv("STRIPE_CURRENCY", "pkr")),
		PostbackBaseURL:  config.GetEnv("PAYMENT_CALLBACK_BASE_URL", "http://localhost:8080/api/payment/callback"),
		PaymentTopicARN:  config.GetEnv("PAYMENT_SNS_TOPIC_ARN", ""),
		ReturnOrigins:    config.GetEnvList("ALLOWED_ORIGINS", "http://localhost:3000"),
		Wallets: map[string]services.WalletProvider{
			models.ProviderJazzCash: {
				Name:       models.ProviderJazzCash,
				BaseURL:    config.GetEnv("JAZZCASH_BASE_URL", "https://sandbox.jazzcash.com.pk/CustomerPortal/transactionmanagement/merchantform/"),
				MerchantID: config.GetEnv("JAZZCASH_MERCHANT_ID", ""),
				Salt:       config.GetEnv("JAZZCASH_INTEGRITY_SALT", ""),
			},
			models.ProviderEasypaisa: {
				Name:       models.ProviderEasypaisa,
				BaseURL:    config.GetEnv("EASYPAISA_BASE_URL", "https://easypay.easypaisa.com.pk/easypay/Index.jsf"),
				MerchantID: config.GetEnv("EASYPAISA_STORE_ID", ""),
				Salt:       config.GetEnv("EASYPAISA_HASH_KEY", ""),
			},
		},
	}

	if err := cfg.Postgres.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.ReturnOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS is required")
	}
	if cfg.StripeSecretKey != "" && cfg.StripeWebhookKey == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_API_KEY is set")
	}
	return cfg, nil
}
