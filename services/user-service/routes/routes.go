package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/user-service/controllers"
)

func RegisterUserRoutes(r *gin.Engine, uc *controllers.UserController) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())

	users.GET("/profile", uc.GetProfile)
	users.PUT("/profile", uc.UpdateProfile)
	users.PUT("/password", uc.ChangePassword)

	admin := users.Group("")
	admin.Use(middleware.AdminOnly())
	admin.GET("", uc.ListUsers)
	admin.POST("", uc.CreateUser)
	admin.GET("/:id", uc.GetUser)
	admin.PUT("/:id", uc.UpdateUser)
	admin.DELETE("/:id", uc.DeleteUser)
}
