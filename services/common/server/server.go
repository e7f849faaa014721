package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/config"
	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/logger"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// Bootstrap loads .env and secrets, then builds the logger (tee'd to
// CloudWatch Logs when configured) and the metrics client.
func Bootstrap(service string) (*zap.Logger, *awspkg.MetricsClient) {
	config.LoadDotEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	secretsErr := config.ApplySecrets(ctx)

	var sink *awspkg.CloudWatchLogsWriter
	sink, sinkErr := awspkg.NewCloudWatchLogsWriter(ctx, service)

	var log *zap.Logger
	var err error
	if sink != nil {
		log, err = logger.New(service, config.GetEnv("APP_ENV", "development"), sink)
	} else {
		log, err = logger.New(service, config.GetEnv("APP_ENV", "development"), nil)
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	if secretsErr != nil {
		log.Fatal("Failed to load secrets", zap.Error(secretsErr))
	}
	if sinkErr != nil {
		log.Warn("CloudWatch logs disabled", zap.Error(sinkErr))
	}

	metrics, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}
	return log, metrics
}

// NewRouter returns a gin engine with the standard middleware chain and a
// /health endpoint.
func NewRouter(service string, log *zap.Logger, metrics *awspkg.MetricsClient) *gin.Engine {
	if config.GetEnv("APP_ENV", "") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apperrors.UseJSONFieldNames()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.MetricsMiddleware(metrics, service),
		middleware.SecurityHeaders(),
		middleware.Timeout(30*time.Second),
		apperrors.ErrorMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": service})
	})
	return r
}

// Run serves handler on :port until SIGINT/SIGTERM, then shuts down within
// 10s and runs cleanups in order.
func Run(port string, handler http.Handler, log *zap.Logger, cleanups ...func()) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server started", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	for _, fn := range cleanups {
		fn()
	}
	log.Info("Server stopped gracefully")
}
