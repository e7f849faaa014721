package services

import (
	"context"
	"net/http"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// StockLine is a single product + quantity sent to inventory-service.
type StockLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type stockItemsRequest struct {
	OrderID string      `json:"order_id"`
	Items   []StockLine `json:"items"`
}

// Inventory is the part of inventory-service the order flow depends on.
type Inventory interface {
	Reserve(ctx context.Context, orderID string, lines []StockLine) error
	Release(ctx context.Context, orderID string, lines []StockLine) error
	Confirm(ctx context.Context, orderID string, lines []StockLine) error
	Return(ctx context.Context, lines []StockLine) error
}

// serviceIdentity lets order-service put confirmed stock back through the
// admin-only add endpoint.
var serviceIdentity = middleware.Identity{UserID: "order-service", Role: auth.RoleSystemAdmin}

// InventoryClient communicates with the inventory service via HTTP
type InventoryClient struct {
	http *client.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{http: client.New(baseURL, timeout)}
}

// Reserve is all-or-nothing; a 409 means some line is short.
func (c *InventoryClient) Reserve(ctx context.Context, orderID string, lines []StockLine) error {
	return c.http.Do(ctx, http.MethodPost, "/stock/reserve", nil, nil, stockItemsRequest{OrderID: orderID, Items: lines}, nil)
}

func (c *InventoryClient) Release(ctx context.Context, orderID string, lines []StockLine) error {
	return c.http.Do(ctx, http.MethodPost, "/stock/release", nil, nil, stockItemsRequest{OrderID: orderID, Items: lines}, nil)
}

func (c *InventoryClient) Confirm(ctx context.Context, orderID string, lines []StockLine) error {
	return c.http.Do(ctx, http.MethodPost, "/stock/confirm", nil, nil, stockItemsRequest{OrderID: orderID, Items: lines}, nil)
}

// Return adds units of a cancelled, already confirmed order back to stock.
func (c *InventoryClient) Return(ctx context.Context, lines []StockLine) error {
	for _, l := range lines {
		body := map[string]int{"quantity": l.Quantity}
		if err := c.http.Do(ctx, http.MethodPost, "/stock/"+l.ProductID+"/add", nil, &serviceIdentity, body, nil); err != nil {
			return err
		}
	}
	return nil
}
