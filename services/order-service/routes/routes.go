package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/order-service/controllers"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController) {
	orders := r.Group("/orders")

	orders.POST("", middleware.OptionalAuth(), oc.CreateOrder)
	orders.GET("/my", middleware.AuthMiddleware(), oc.GetMyOrders)
	orders.GET("/shop/:shopId", middleware.AuthMiddleware(), middleware.AdminOnly(), middleware.ShopScope("shopId"), oc.GetShopOrders)
	orders.GET("", middleware.AuthMiddleware(), middleware.RequireRoles(auth.RoleSystemAdmin), oc.GetAllOrders)

	// Order ids are random uuids, so lookups by id stay public.
	orders.GET("/:id", oc.GetOrder)
	orders.GET("/:id/history", oc.GetHistory)

	orders.PATCH("/:id/status", middleware.AuthMiddleware(), middleware.AdminOnly(), oc.UpdateStatus)
	orders.POST("/:id/cancel", middleware.AuthMiddleware(), oc.CancelOrder)
}
