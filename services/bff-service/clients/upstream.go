package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/models"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
)

type URLs struct {
	Shop      string
	Product   string
	User      string
	Order     string
	Inventory string
}

// Upstreams calls the services behind the gateway directly, forwarding the
// caller identity headers the gateway set on the inbound request.
type Upstreams struct {
	shop      *client.Client
	product   *client.Client
	user      *client.Client
	order     *client.Client
	inventory *client.Client
}

func NewUpstreams(urls URLs, timeout time.Duration) *Upstreams {
	return &Upstreams{
		shop:      client.New(urls.Shop, timeout),
		product:   client.New(urls.Product, timeout),
		user:      client.New(urls.User, timeout),
		order:     client.New(urls.Order, timeout),
		inventory: client.New(urls.Inventory, timeout),
	}
}

type listMeta struct {
	Meta pagination.Meta `json:"meta"`
}

func (u *Upstreams) PublicShop(ctx context.Context, slug string) (*models.PublicShop, error) {
	var out struct {
		Shop models.PublicShop `json:"shop"`
	}
	if err := u.shop.Do(ctx, http.MethodGet, "/shops/public/"+url.PathEscape(slug), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

func (u *Upstreams) ShopProducts(ctx context.Context, shopID string, query url.Values) (*models.ProductPage, error) {
	var out models.ProductPage
	if err := u.product.Do(ctx, http.MethodGet, "/products/shop/"+url.PathEscape(shopID), query, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Upstreams) CountShops(ctx context.Context, caller middleware.Identity) (int64, error) {
	var out listMeta
	if err := u.shop.Do(ctx, http.MethodGet, "/shops", onePage(), &caller, nil, &out); err != nil {
		return 0, err
	}
	return out.Meta.Total, nil
}

func (u *Upstreams) CountUsers(ctx context.Context, caller middleware.Identity) (int64, error) {
	var out listMeta
	if err := u.user.Do(ctx, http.MethodGet, "/users", onePage(), &caller, nil, &out); err != nil {
		return 0, err
	}
	return out.Meta.Total, nil
}

// RecentOrders lists the newest orders of one shop, or of every shop when
// shopID is empty.
func (u *Upstreams) RecentOrders(ctx context.Context, caller middleware.Identity, shopID string, limit int) (*models.OrdersSection, error) {
	path := "/orders"
	if shopID != "" {
		path = "/orders/shop/" + url.PathEscape(shopID)
	}
	var out struct {
		Orders []json.RawMessage `json:"orders"`
		Meta   pagination.Meta   `json:"meta"`
	}
	q := url.Values{"page": {"1"}, "limit": {strconv.Itoa(limit)}}
	if err := u.order.Do(ctx, http.MethodGet, path, q, &caller, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []json.RawMessage{}
	}
	return &models.OrdersSection{Total: out.Meta.Total, Recent: out.Orders}, nil
}

func (u *Upstreams) StockSummary(ctx context.Context, caller middleware.Identity, shopID string) (*stock.Summary, error) {
	var out struct {
		Summary stock.Summary `json:"summary"`
	}
	if err := u.inventory.Do(ctx, http.MethodGet, "/stock/shop/"+url.PathEscape(shopID), onePage(), &caller, nil, &out); err != nil {
		return nil, err
	}
	return &out.Summary, nil
}

func onePage() url.Values {
	return url.Values{"page": {"1"}, "limit": {"1"}}
}
