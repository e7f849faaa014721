package models

import "time"

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 99

type CartItem struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is one owner's cart for one shop.
type Cart struct {
	ShopSlug string     `json:"shop_slug"`
	Items    []CartItem `json:"items"`
	Count    int        `json:"count"`
	Total    float64    `json:"total"`
}

type AddItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"gte=0"`
	Quantity  int     `json:"quantity" binding:"omitempty,min=1"`
	ImageURL  string  `json:"image_url"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

type ItemStatus struct {
	InCart   bool `json:"in_cart"`
	Quantity int  `json:"quantity"`
}

type WishlistItem struct {
	ProductID string    `json:"product_id" binding:"required"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

type ToggleWishlistRequest struct {
	Product WishlistItem `json:"product" binding:"required"`
}
