package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/api-gateway/config"
	"github.com/Khizarkk7/storefront-backend/api-gateway/routes"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/server"
)

func main() {
	log, metrics := server.Bootstrap("api-gateway")
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(config.New())
	if err != nil {
		log.Fatal("Invalid gateway configuration", zap.Error(err))
	}
	log.Info("Starting API Gateway...", zap.Int("routes", len(cfg.Routes)), zap.Strings("origins", cfg.AllowedOrigins))

	r := server.NewRouter("api-gateway", log, metrics)
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(middleware.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst)))

	routes.RegisterAllRoutes(r, cfg, log)

	server.Run(cfg.Port, r, log)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Cart-ID", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Cart-ID", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			// credentials cannot be combined with a wildcard origin
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return cors.New(c)
		}
	}
	c.AllowOrigins = origins
	return cors.New(c)
}
