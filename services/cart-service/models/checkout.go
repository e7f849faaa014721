package models

// CheckoutRequest is what the storefront posts; the items come from the cart.
type CheckoutRequest struct {
	ShopID    string       `json:"shop_id" binding:"required,uuid"`
	Customer  Customer     `json:"customer" binding:"required"`
	Shipping  Shipping     `json:"shipping" binding:"required"`
	Payment   PaymentInput `json:"payment" binding:"required"`
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

// OrderRequest is the body of POST /orders on order-service.
type OrderRequest struct {
	ShopID    string       `json:"shop_id"`
	Customer  Customer     `json:"customer"`
	Shipping  Shipping     `json:"shipping"`
	Payment   PaymentInput `json:"payment"`
	Items     []OrderLine  `json:"items"`
	PromoCode string       `json:"promo_code,omitempty"`
	Notes     string       `json:"notes,omitempty"`
}

type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderResponse struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	OrderID         string  `json:"order_id"`
	OrderNumber     string  `json:"order_number"`
	OrderStatus     string  `json:"order_status"`
	PaymentStatus   string  `json:"payment_status"`
	RequiresPayment bool    `json:"requires_payment"`
	GrandTotal      float64 `json:"grand_total"`
}
