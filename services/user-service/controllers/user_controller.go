package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/user-service/models"
	"github.com/Khizarkk7/storefront-backend/services/user-service/services"
)

type UserController struct {
	userService services.UserService
}

func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers handles GET /users.
func (uc *UserController) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	filter := models.ListFilter{
		Search: c.Query("search"),
		ShopID: c.Query("shop_id"),
		Role:   c.Query("role"),
	}

	users, total, svcErr := uc.userService.ListUsers(c.Request.Context(), middleware.CurrentIdentity(c), filter, p)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "meta": pagination.NewMeta(p, total)})
}

// GetUser handles GET /users/:id.
func (uc *UserController) GetUser(c *gin.Context) {
	user, svcErr := uc.userService.GetUser(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateUser handles POST /users.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	user, svcErr := uc.userService.CreateUser(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": user})
}

// UpdateUser handles PUT /users/:id.
func (uc *UserController) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	user, svcErr := uc.userService.UpdateUser(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
}

// DeleteUser handles DELETE /users/:id.
func (uc *UserController) DeleteUser(c *gin.Context) {
	if svcErr := uc.userService.DeleteUser(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// GetProfile returns the logged-in user's profile.
func (uc *UserController) GetProfile(c *gin.Context) {
	user, svcErr := uc.userService.GetProfile(c.Request.Context(), middleware.CurrentIdentity(c).UserID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": apperrors.Details(err)})
		return
	}
	user, svcErr := uc.userService.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c).UserID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

func (uc *UserController) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	if svcErr := uc.userService.ChangePassword(c.Request.Context(), middleware.CurrentIdentity(c).UserID, &req); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
