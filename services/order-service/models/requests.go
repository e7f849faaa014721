package models

// CreateOrderRequest is posted by cart-service checkout or directly by the
// storefront.
type CreateOrderRequest struct {
	ShopID    string       `json:"shop_id" binding:"required,uuid"`
	Customer  Customer     `json:"customer" binding:"required"`
	Shipping  Shipping     `json:"shipping" binding:"required"`
	Payment   PaymentInput `json:"payment" binding:"required"`
	Items     []ItemInput  `json:"items" binding:"required,min=1,dive"`
	PromoCode string       `json:"promo_code"`
	Notes     string       `json:"notes"`
}

type Customer struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
}

type Shipping struct {
	Address    string   `json:"address" binding:"required"`
	City       string   `json:"city" binding:"required"`
	Province   string   `json:"province" binding:"required"`
	PostalCode string   `json:"postal_code" binding:"required"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type PaymentInput struct {
	Method string `json:"method" binding:"required"`
}

// ItemInput is a requested line. Name and Price are accepted for display
// only; the order is priced from the catalog.
type ItemInput struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
}

type CreateOrderResponse struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	OrderID         string  `json:"order_id"`
	OrderNumber     string  `json:"order_number"`
	OrderStatus     string  `json:"order_status"`
	PaymentStatus   string  `json:"payment_status"`
	RequiresPayment bool    `json:"requires_payment"`
	GrandTotal      float64 `json:"grand_total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
