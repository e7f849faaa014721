package routes

import (
	"github.com/gin-gonic/gin"

	commonauth "github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/controllers"
)

func RegisterShopRoutes(r *gin.Engine, sc *controllers.ShopController) {
	r.GET("/shops/public/:slug", sc.GetPublicShop)

	shops := r.Group("/shops")
	shops.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		// shop admins are checked against their own shop in the service
		shops.GET("/:id", sc.GetShop)
		shops.PUT("/:id", sc.UpdateShop)

		sysAdmin := shops.Group("")
		sysAdmin.Use(middleware.RequireRoles(commonauth.RoleSystemAdmin))
		sysAdmin.GET("", sc.ListShops)
		sysAdmin.POST("", sc.CreateShop)
		sysAdmin.PUT("/:id/deactivate", sc.DeactivateShop)
	}

	menus := r.Group("/menus")
	menus.Use(middleware.AuthMiddleware())
	menus.GET("/role/:roleId", sc.GetMenusByRole)
}
