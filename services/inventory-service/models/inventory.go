package models

import (
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
)

// Change types recorded in stock history.
const (
	ChangeInit    = "INIT"
	ChangeAdd     = "ADD"
	ChangeReduce  = "REDUCE"
	ChangeReserve = "RESERVE"
	ChangeRelease = "RELEASE"
	ChangeConfirm = "CONFIRM"
)

// Stock is one row per product. Available is kept equal to
// Quantity - Reserved by every conditional update, and each update bumps
// Version.
type Stock struct {
	ProductID   string    `json:"product_id" dynamodbav:"product_id"`
	ShopID      string    `json:"shop_id" dynamodbav:"shop_id"`
	ProductName string    `json:"product_name" dynamodbav:"product_name"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Quantity    int       `json:"quantity" dynamodbav:"quantity"`
	Reserved    int       `json:"reserved" dynamodbav:"reserved"`
	Available   int       `json:"available" dynamodbav:"available"`
	Threshold   int       `json:"threshold" dynamodbav:"threshold"`
	Version     int64     `json:"version" dynamodbav:"version"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Status classifies what can still be sold.
func (s *Stock) Status() string {
	return stock.Classify(s.Available, s.Threshold)
}

type StockView struct {
	Stock
	Status string `json:"status"`
}

func NewStockView(s *Stock) StockView {
	return StockView{Stock: *s, Status: s.Status()}
}

type StockPage struct {
	Data    []StockView     `json:"data"`
	Meta    pagination.Meta `json:"meta"`
	Summary stock.Summary   `json:"summary"`
}

// StockHistory rows sort newest first on SortKey.
type StockHistory struct {
	ProductID        string    `json:"product_id" dynamodbav:"product_id"`
	SortKey          string    `json:"-" dynamodbav:"sk"`
	HistoryID        string    `json:"history_id" dynamodbav:"history_id"`
	ShopID           string    `json:"shop_id" dynamodbav:"shop_id"`
	ChangeType       string    `json:"change_type" dynamodbav:"change_type"`
	QuantityChanged  int       `json:"quantity_changed" dynamodbav:"quantity_changed"`
	PreviousQuantity int       `json:"previous_quantity" dynamodbav:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity" dynamodbav:"new_quantity"`
	OrderID          string    `json:"order_id,omitempty" dynamodbav:"order_id,omitempty"`
	ChangedBy        string    `json:"changed_by" dynamodbav:"changed_by"`
	ChangedAt        time.Time `json:"changed_at" dynamodbav:"changed_at"`
}

// CreateStockRequest registers a product's stock row.
type CreateStockRequest struct {
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	ShopID      string  `json:"shop_id" binding:"required,uuid"`
	ProductName string  `json:"product_name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Quantity    int     `json:"quantity" binding:"gte=0"`
	Threshold   int     `json:"threshold" binding:"gte=0"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ItemsRequest is the body of check, reserve, release and confirm.
type ItemsRequest struct {
	OrderID string     `json:"order_id"`
	Items   []LineItem `json:"items" binding:"required,min=1,dive"`
}

type LineItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// StockCheckResult represents availability info for a single product
type StockCheckResult struct {
	ProductID    string `json:"product_id"`
	Available    int    `json:"available"`
	Requested    int    `json:"requested"`
	IsSufficient bool   `json:"is_sufficient"`
}
