package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/auth-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// RegisterAuthRoutes wires /auth. Credential endpoints share one per-IP limiter.
func RegisterAuthRoutes(r *gin.Engine, ac *controllers.AuthController, limiter *middleware.RateLimiter) {
	auth := r.Group("/auth")

	public := auth.Group("")
	public.Use(middleware.RateLimitMiddleware(limiter))
	public.POST("/register", ac.Register)
	public.POST("/login", ac.Login)
	public.POST("/refresh", ac.Refresh)
	public.POST("/forgot-password", ac.ForgotPassword)
	public.POST("/reset-password", ac.ResetPassword)

	auth.POST("/logout", ac.Logout)
	auth.GET("/roles", ac.Roles)
	auth.GET("/me", middleware.AuthMiddleware(), ac.Me)
}
