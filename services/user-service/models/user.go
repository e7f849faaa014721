package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User maps the users table owned by auth-service.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username   string         `gorm:"size:100;not null" json:"username"`
	Email      string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Role       string         `gorm:"type:varchar(30);default:'customer'" json:"role"`
	RoleID     int            `gorm:"default:3" json:"role_id"`
	ShopID     *uuid.UUID     `gorm:"type:uuid;index" json:"shop_id,omitempty"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,min=2,max=100"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Role     string  `json:"role" binding:"required"`
	ShopID   *string `json:"shop_id"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUserRequest: nil fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=100"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	ShopID   *string `json:"shop_id"`
	IsActive *bool   `json:"is_active"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=100"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type ListFilter struct {
	Search string
	ShopID string
	Role   string
}
