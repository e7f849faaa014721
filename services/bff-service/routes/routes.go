package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

func RegisterRoutes(r *gin.Engine, ctrl *controllers.BFFController) {
	r.GET("/storefront/:slug", ctrl.Storefront)
	r.GET("/dashboard", middleware.AuthMiddleware(), middleware.AdminOnly(), ctrl.Dashboard)
}
