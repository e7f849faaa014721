package services

import (
	"context"
	"net/http"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// OrderPlacer submits a built order to order-service.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, caller *middleware.Identity, req models.OrderRequest) (*models.OrderResponse, error)
}

type OrderClient struct {
	http *client.Client
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{http: client.New(baseURL, timeout)}
}

// PlaceOrder forwards the caller identity so order-service can attach the
// order to the signed-in customer. caller is nil for guests.
func (oc *OrderClient) PlaceOrder(ctx context.Context, caller *middleware.Identity, req models.OrderRequest) (*models.OrderResponse, error) {
	var resp models.OrderResponse
	if err := oc.http.Do(ctx, http.MethodPost, "/orders", nil, caller, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
