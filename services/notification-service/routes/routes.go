package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/controllers"
)

func RegisterRoutes(router *gin.Engine, controller *controllers.NotificationController) {
	admin := router.Group("/notifications", middleware.AuthMiddleware(), middleware.RequireRoles(auth.RoleSystemAdmin))
	{
		admin.GET("", controller.GetNotificationLogs)
	}
}
