package models

import (
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shop struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"shop_id"`
	ShopName    string         `gorm:"size:150;not null" json:"shop_name"`
	Slug        string         `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	ContactInfo string         `gorm:"size:255" json:"contact_info"`
	LogoKey     string         `gorm:"size:255" json:"logo"`
	CreatedBy   *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatorName string         `gorm:"size:100" json:"creator_name"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ShopView adds the rendered logo URL.
type ShopView struct {
	Shop
	FullLogoURL string `json:"full_logo_url"`
}

// PublicShop is what anonymous storefront visitors get.
type PublicShop struct {
	ShopID      uuid.UUID `json:"shop_id"`
	ShopName    string    `json:"shop_name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contact_info"`
	Logo        string    `json:"logo"`
	FullLogoURL string    `json:"full_logo_url"`
}

// ShopForm is bound from multipart/form-data (or JSON) on create and edit.
type ShopForm struct {
	ShopName    string `form:"shop_name" json:"shop_name"`
	Description string `form:"description" json:"description"`
	ContactInfo string `form:"contact_info" json:"contact_info"`
}

// LogoUpload is the optional "logo" file part.
type LogoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type ListFilter struct {
	Search          string
	IncludeInactive bool
}
