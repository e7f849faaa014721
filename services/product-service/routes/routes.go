package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/product-service/controllers"
)

func RegisterProductRoutes(r *gin.Engine, pc *controllers.ProductController) {
	public := r.Group("/products")
	{
		public.GET("/shop/:shopId", pc.ListByShop)
		public.GET("/:id", pc.GetProduct)
	}

	admin := r.Group("/products")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.POST("", pc.CreateProduct)
		admin.POST("/images/presign", pc.PresignImage)
		admin.PUT("/:id", pc.UpdateProduct)
		admin.DELETE("/:id", pc.DeleteProduct)
	}
}
