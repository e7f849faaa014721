package services

import (
	"context"
	"net/http"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
)

type Orders interface {
	GetOrder(ctx context.Context, orderID string) (*models.OrderView, error)
}

type OrderClient struct {
	http *client.Client
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{http: client.New(baseURL, timeout)}
}

func (c *OrderClient) GetOrder(ctx context.Context, orderID string) (*models.OrderView, error) {
	var out struct {
		Order models.OrderView `json:"order"`
	}
	if err := c.http.Do(ctx, http.MethodGet, "/orders/"+orderID, nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}
