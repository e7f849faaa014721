package models

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
)

// PublicShop mirrors the shop-service public view.
type PublicShop struct {
	ShopID      uuid.UUID `json:"shop_id"`
	ShopName    string    `json:"shop_name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contact_info"`
	Logo        string    `json:"logo"`
	FullLogoURL string    `json:"full_logo_url"`
}

// ProductPage is passed through from product-service untouched.
type ProductPage struct {
	Data    []json.RawMessage `json:"data"`
	Meta    pagination.Meta   `json:"meta"`
	Summary stock.Summary     `json:"summary"`
}

type Storefront struct {
	Shop     PublicShop  `json:"shop"`
	Products ProductPage `json:"products"`
}

type Count struct {
	Total int64 `json:"total"`
}

type OrdersSection struct {
	Total  int64             `json:"total"`
	Recent []json.RawMessage `json:"recent"`
}

// Dashboard sections are nil when they were not requested or failed; failed
// sections are named in Errors.
type Dashboard struct {
	ShopID string            `json:"shop_id,omitempty"`
	Shops  *Count            `json:"shops,omitempty"`
	Users  *Count            `json:"users,omitempty"`
	Orders *OrdersSection    `json:"orders,omitempty"`
	Stock  *stock.Summary    `json:"stock,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}
