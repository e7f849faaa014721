package services

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/client"
)

// CatalogProduct is the part of product-service's product document an order
// line is priced from.
type CatalogProduct struct {
	ID          string  `json:"product_id"`
	ShopID      string  `json:"shop_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
}

type Catalog interface {
	Product(ctx context.Context, productID string) (*CatalogProduct, error)
}

type CatalogClient struct {
	http *client.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{http: client.New(baseURL, timeout)}
}

// Product returns a client.StatusError with 404 for unknown or deleted
// products.
func (c *CatalogClient) Product(ctx context.Context, productID string) (*CatalogProduct, error) {
	var out CatalogProduct
	if err := c.http.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
