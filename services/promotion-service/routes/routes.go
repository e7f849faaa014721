package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/controllers"
)

// RegisterPromoRoutes sets up all promo-code routes.
func RegisterPromoRoutes(r *gin.Engine, pc *controllers.PromoController) {
	promos := r.Group("/promotions")

	// Storefront validation and the internal redeem call need no login.
	promos.POST("/validate", pc.Validate)
	promos.POST("/redeem", pc.Redeem)

	admin := promos.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.POST("", pc.CreatePromo)
	admin.GET("", pc.ListPromos)
	admin.GET("/:code", pc.GetPromo)
	admin.PUT("/:code/deactivate", pc.DeactivatePromo)
}
