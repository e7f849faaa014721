package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProviderStripe    = "stripe"
	ProviderJazzCash  = "jazzcash"
	ProviderEasypaisa = "easypaisa"
)

const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
)

type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	OrderNumber   string          `gorm:"type:varchar(32)" json:"order_number"`
	Provider      string          `gorm:"type:varchar(20);not null" json:"provider"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(10);not null" json:"currency"`
	Status        string          `gorm:"type:varchar(20);not null;index" json:"status"`
	ProviderRef   string          `gorm:"type:varchar(255);index" json:"provider_ref,omitempty"`
	PaymentURL    string          `gorm:"type:varchar(2048)" json:"payment_url,omitempty"`
	ReturnURL     string          `gorm:"type:varchar(1024)" json:"-"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CustomerEmail string          `json:"-"`
	CustomerPhone string          `json:"-"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Terminal payments are never rewritten by later webhooks.
func (p *Payment) Terminal() bool {
	return p.Status != StatusPending
}

type InitiateRequest struct {
	OrderID   string `json:"order_id" binding:"required,uuid"`
	ReturnURL string `json:"return_url" binding:"required,url"`
}

type InitiateResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id"`
	PaymentID  string `json:"payment_id"`
	Provider   string `json:"provider"`
	Reused     bool   `json:"reused,omitempty"`
}

// OrderView is the part of order-service's order the payment flow reads.
type OrderView struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	PaymentMethod string          `json:"payment_method"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus string          `json:"payment_status"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
}
