package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MethodCOD       = "cod"
	MethodCard      = "card"
	MethodJazzCash  = "jazzcash"
	MethodEasypaisa = "easypaisa"
)

const (
	StatusPendingPayment = "pending_payment"
	StatusPendingCOD     = "pending_cod"
	StatusConfirmed      = "confirmed"
	StatusProcessing     = "processing"
	StatusShipped        = "shipped"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

const (
	PaymentPending    = "pending"
	PaymentPendingCOD = "pending_cod"
	PaymentPaid       = "paid"
	PaymentFailed     = "failed"
)

// Where the order's stock stands in inventory-service.
const (
	StockReserved  = "reserved"
	StockConfirmed = "confirmed"
	StockReleased  = "released"
)

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	ShopID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"not null" json:"customer_email"`
	CustomerPhone   string          `gorm:"not null" json:"customer_phone"`
	ShippingAddress string          `gorm:"not null" json:"shipping_address"`
	City            string          `gorm:"not null" json:"city"`
	Province        string          `gorm:"not null" json:"province"`
	PostalCode      string          `gorm:"not null" json:"postal_code"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	OrderStatus     string          `gorm:"type:varchar(20);not null;index" json:"order_status"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null" json:"payment_status"`
	StockState      string          `gorm:"type:varchar(20);not null;default:'reserved'" json:"-"`
	PromoCode       string          `gorm:"type:varchar(64)" json:"promo_code,omitempty"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingCost    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_cost"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	GrandTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grand_total"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID string          `gorm:"type:varchar(64);not null" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

type OrderStatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus string    `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"to_status"`
	Note       string    `json:"note,omitempty"`
	ChangedBy  string    `json:"changed_by,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
