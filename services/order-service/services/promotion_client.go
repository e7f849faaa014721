package services

import (
	"context"
	"net/http"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/client"
)

// PromoResult mirrors promotion-service's validate response.
type PromoResult struct {
	Valid        bool    `json:"valid"`
	Code         string  `json:"code"`
	Type         string  `json:"type"`
	Discount     float64 `json:"discount"`
	FreeShipping bool    `json:"free_shipping"`
	Message      string  `json:"message"`
}

type Promotions interface {
	Validate(ctx context.Context, code, shopID string, subtotal float64) (*PromoResult, error)
	Redeem(ctx context.Context, code, orderID string, discount float64) error
}

type PromotionClient struct {
	http *client.Client
}

func NewPromotionClient(baseURL string, timeout time.Duration) *PromotionClient {
	return &PromotionClient{http: client.New(baseURL, timeout)}
}

func (c *PromotionClient) Validate(ctx context.Context, code, shopID string, subtotal float64) (*PromoResult, error) {
	body := map[string]any{"code": code, "shop_id": shopID, "subtotal": subtotal}
	var out PromoResult
	if err := c.http.Do(ctx, http.MethodPost, "/promotions/validate", nil, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PromotionClient) Redeem(ctx context.Context, code, orderID string, discount float64) error {
	body := map[string]any{"code": code, "order_id": orderID, "discount": discount}
	return c.http.Do(ctx, http.MethodPost, "/promotions/redeem", nil, nil, body, nil)
}
