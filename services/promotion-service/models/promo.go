package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromoType represents the kind of discount a code grants.
type PromoType string

const (
	PromoPercentage   PromoType = "percentage"
	PromoFlat         PromoType = "flat"
	PromoFreeShipping PromoType = "free_shipping"
)

// PromoCode is stored upper-case. A nil ShopID applies to every shop.
type PromoCode struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	ShopID        *uuid.UUID      `gorm:"type:uuid;index" json:"shop_id"`
	Type          PromoType       `gorm:"type:varchar(20);not null" json:"type"`
	Value         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	MinOrderValue decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"min_order_value"`
	MaxDiscount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"max_discount"` // 0 = no cap
	UsageLimit    int             `gorm:"not null;default:0" json:"usage_limit"`                     // 0 = unlimited
	UsedCount     int             `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Redemption records one use of a code by one order.
type Redemption struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PromoCodeID uuid.UUID       `gorm:"type:uuid;index;not null" json:"promo_code_id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type CreatePromoRequest struct {
	Code          string     `json:"code" binding:"required,min=3,max=64"`
	ShopID        string     `json:"shop_id" binding:"omitempty,uuid"`
	Type          PromoType  `json:"type" binding:"required,oneof=percentage flat free_shipping"`
	Value         float64    `json:"value" binding:"gte=0"`
	MinOrderValue float64    `json:"min_order_value" binding:"gte=0"`
	MaxDiscount   float64    `json:"max_discount" binding:"gte=0"`
	UsageLimit    int        `json:"usage_limit" binding:"gte=0"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type ValidateRequest struct {
	Code     string  `json:"code" binding:"required"`
	ShopID   string  `json:"shop_id" binding:"omitempty,uuid"`
	Subtotal float64 `json:"subtotal" binding:"gte=0"`
}

type ValidateResponse struct {
	Valid        bool      `json:"valid"`
	Code         string    `json:"code"`
	Type         PromoType `json:"type,omitempty"`
	Discount     float64   `json:"discount"`
	FreeShipping bool      `json:"free_shipping"`
	Message      string    `json:"message"`
}

type RedeemRequest struct {
	Code     string  `json:"code" binding:"required"`
	OrderID  string  `json:"order_id" binding:"required,uuid"`
	Discount float64 `json:"discount" binding:"gte=0"`
}

type RedeemResponse struct {
	Redeemed        bool   `json:"redeemed"`
	AlreadyRedeemed bool   `json:"already_redeemed"`
	Code            string `json:"code"`
	UsedCount       int    `json:"used_count"`
}
