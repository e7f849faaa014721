package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/controllers"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	payments := r.Group("/payment")
	// Guests pay for their own orders too.
	payments.POST("/initiate", middleware.OptionalAuth(), pc.InitiatePayment)
	payments.GET("/order/:orderId", pc.GetPaymentByOrder)

	// Provider callbacks are authenticated by their signatures.
	payments.POST("/callback/:provider", pc.WalletCallback)
	r.POST("/stripe/webhook", pc.StripeWebhook)
}
