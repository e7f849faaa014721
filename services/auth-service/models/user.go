package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is shared with user-service through the users table.
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

// RefreshToken stores issued refresh tokens (by jti) for rotation and revocation.
type RefreshToken struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TokenID    string    `gorm:"uniqueIndex;not null"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Revoked    bool      `gorm:"default:false"`
	RememberMe bool      `gorm:"default:false"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// PasswordReset holds a hashed one-time code.
type PasswordReset struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CodeHash  string    `gorm:"size:64;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type Role struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:30;uniqueIndex;not null" json:"name"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &RefreshToken{}, &PasswordReset{}, &Role{})
}

// UserView is what login and /me return.
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	RoleID   int    `json:"role_id"`
	ShopID   string `json:"shop_id,omitempty"`
}

func (u *User) View() UserView {
	v := UserView{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		RoleID:   u.RoleID,
	}
	if u.ShopID != nil {
		v.ShopID = u.ShopID.String()
	}
	return v
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required"`
}

// TokenPair is the result of login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"-"`
}

type LoginResult struct {
	Tokens *TokenPair
	User   UserView
}
