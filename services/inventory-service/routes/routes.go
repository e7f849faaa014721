package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/controllers"
)

// RegisterRoutes registers all inventory service routes
func RegisterRoutes(r *gin.Engine, ctrl *controllers.InventoryController) {
	stock := r.Group("/stock")
	{
		stock.GET("/:productId", ctrl.GetStock)

		// Internal endpoints used by order-service; the gateway does not route them.
		stock.POST("/check", ctrl.CheckStock)
		stock.POST("/reserve", ctrl.ReserveStock)
		stock.POST("/release", ctrl.ReleaseStock)
		stock.POST("/confirm", ctrl.ConfirmStock)
	}

	admin := r.Group("/stock")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.GET("/shop/:shopId", middleware.ShopScope("shopId"), ctrl.ListByShop)
		admin.POST("", ctrl.CreateStock)
		admin.POST("/:productId/add", ctrl.AddQuantity)
		admin.POST("/:productId/reduce", ctrl.ReduceQuantity)
		admin.GET("/:productId/history", ctrl.History)
	}
}
