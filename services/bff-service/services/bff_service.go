package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/models"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Upstream is satisfied by *clients.Upstreams.
type Upstream interface {
	PublicShop(ctx context.Context, slug string) (*models.PublicShop, error)
	ShopProducts(ctx context.Context, shopID string, query url.Values) (*models.ProductPage, error)
	CountShops(ctx context.Context, caller middleware.Identity) (int64, error)
	CountUsers(ctx context.Context, caller middleware.Identity) (int64, error)
	RecentOrders(ctx context.Context, caller middleware.Identity, shopID string, limit int) (*models.OrdersSection, error)
	StockSummary(ctx context.Context, caller middleware.Identity, shopID string) (*stock.Summary, error)
}

type BFFService interface {
	Storefront(ctx context.Context, slug string, query url.Values) (*models.Storefront, *ServiceError)
	Dashboard(ctx context.Context, caller middleware.Identity, shopID string) (*models.Dashboard, *ServiceError)
}

const (
	SectionShops  = "shops"
	SectionUsers  = "users"
	SectionOrders = "orders"
	SectionStock  = "stock"

	recentOrders = 5
)

type bffService struct {
	upstream       Upstream
	sectionTimeout time.Duration
	logger         *zap.Logger
}

func NewBFFService(upstream Upstream, sectionTimeout time.Duration, logger *zap.Logger) BFFService {
	return &bffService{upstream: upstream, sectionTimeout: sectionTimeout, logger: logger}
}

// storefrontParams are the product list parameters a storefront may forward.
var storefrontParams = []string{"page", "limit", "search", "status"}

func (s *bffService) Storefront(ctx context.Context, slug string, query url.Values) (*models.Storefront, *ServiceError) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, &ServiceError{StatusCode: 404, Message: "shop not found"}
	}

	shop, err := s.upstream.PublicShop(ctx, slug)
	if err != nil {
		if status := upstreamStatus(err); status == 404 {
			return nil, &ServiceError{StatusCode: 404, Message: "shop not found"}
		}
		s.logger.Error("Failed to load shop", zap.String("slug", slug), zap.Error(err))
		return nil, &ServiceError{StatusCode: 502, Message: "shop service unavailable"}
	}

	forward := url.Values{}
	for _, k := range storefrontParams {
		if v := query.Get(k); v != "" {
			forward.Set(k, v)
		}
	}
	products, err := s.upstream.ShopProducts(ctx, shop.ShopID.String(), forward)
	if err != nil {
		var se *client.StatusError
		if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
			return nil, &ServiceError{StatusCode: se.StatusCode, Message: se.Message}
		}
		s.logger.Error("Failed to load storefront products", zap.String("shop_id", shop.ShopID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 502, Message: "product service unavailable"}
	}
	if products.Data == nil {
		products.Data = []json.RawMessage{}
	}
	return &models.Storefront{Shop: *shop, Products: *products}, nil
}

// Dashboard loads every section concurrently. Shop admins are pinned to
// their own shop; system admins see all shops unless shopID narrows it.
func (s *bffService) Dashboard(ctx context.Context, caller middleware.Identity, shopID string) (*models.Dashboard, *ServiceError) {
	shopID = strings.TrimSpace(shopID)
	if caller.IsShopAdmin() {
		if shopID != "" && shopID != caller.ShopID {
			return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
		}
		shopID = caller.ShopID
		if shopID == "" {
			return nil, &ServiceError{StatusCode: 403, Message: "shop admin has no shop"}
		}
	} else if !caller.IsSystemAdmin() {
		return nil, &ServiceError{StatusCode: 403, Message: "admin access required"}
	}

	d := &models.Dashboard{ShopID: shopID}
	sections := map[string]func(ctx context.Context) error{
		SectionUsers: func(ctx context.Context) error {
			n, err := s.upstream.CountUsers(ctx, caller)
			if err == nil {
				d.Users = &models.Count{Total: n}
			}
			return err
		},
		SectionOrders: func(ctx context.Context) error {
			orders, err := s.upstream.RecentOrders(ctx, caller, shopID, recentOrders)
			if err == nil {
				d.Orders = orders
			}
			return err
		},
	}
	if caller.IsSystemAdmin() {
		sections[SectionShops] = func(ctx context.Context) error {
			n, err := s.upstream.CountShops(ctx, caller)
			if err == nil {
				d.Shops = &models.Count{Total: n}
			}
			return err
		}
	}
	if shopID != "" {
		sections[SectionStock] = func(ctx context.Context) error {
			summary, err := s.upstream.StockSummary(ctx, caller, shopID)
			if err == nil {
				d.Stock = summary
			}
			return err
		}
	}

	errs := s.fanOut(ctx, sections)
	if len(errs) == len(sections) {
		return nil, &ServiceError{StatusCode: 502, Message: "dashboard unavailable"}
	}
	if len(errs) > 0 {
		d.Errors = make(map[string]string, len(errs))
		for name, err := range errs {
			d.Errors[name] = sectionError(err)
			s.logger.Warn("Dashboard section failed", zap.String("section", name), zap.Error(err))
		}
	}
	return d, nil
}

// fanOut runs every section in its own goroutine under a per-section timeout
// and returns the failures by name. Each section writes only its own field.
func (s *bffService) fanOut(ctx context.Context, sections map[string]func(ctx context.Context) error) map[string]error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = map[string]error{}
	)
	for name, fn := range sections {
		wg.Add(1)
		go func(name string, fn func(ctx context.Context) error) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, s.sectionTimeout)
			defer cancel()
			if err := fn(sctx); err != nil {
				mu.Lock()
				errs[name] = err
				mu.Unlock()
			}
		}(name, fn)
	}
	wg.Wait()
	return errs
}

func upstreamStatus(err error) int {
	var se *client.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func sectionError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var se *client.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return "unavailable"
}
