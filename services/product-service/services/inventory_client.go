package services

import (
	"context"
	"net/http"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// StockRegistration is the body of POST /stock on inventory-service.
type StockRegistration struct {
	ProductID   string  `json:"product_id"`
	ShopID      string  `json:"shop_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Threshold   int     `json:"threshold"`
}

// Inventory is the part of inventory-service the catalogue depends on.
type Inventory interface {
	RegisterStock(ctx context.Context, caller middleware.Identity, reg StockRegistration) error
	AdjustStock(ctx context.Context, caller middleware.Identity, productID string, delta int) error
}

// InventoryClient calls the inventory-service HTTP API.
type InventoryClient struct {
	http *client.Client
}

func NewInventoryClient(baseURL string) *InventoryClient {
	return &InventoryClient{http: client.New(baseURL, 10*time.Second)}
}

// RegisterStock creates the stock row for a new product. inventory-service
// treats a repeat for the same product as a no-op.
func (ic *InventoryClient) RegisterStock(ctx context.Context, caller middleware.Identity, reg StockRegistration) error {
	return ic.http.Do(ctx, http.MethodPost, "/stock", nil, &caller, reg, nil)
}

// AdjustStock adds (delta > 0) or removes (delta < 0) units.
func (ic *InventoryClient) AdjustStock(ctx context.Context, caller middleware.Identity, productID string, delta int) error {
	if delta == 0 {
		return nil
	}
	op := "/add"
	if delta < 0 {
		op = "/reduce"
		delta = -delta
	}
	body := map[string]int{"quantity": delta}
	return ic.http.Do(ctx, http.MethodPost, "/stock/"+productID+op, nil, &caller, body, nil)
}
