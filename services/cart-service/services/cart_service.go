package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// CartStore is satisfied by *repository.CartRepository.
type CartStore interface {
	Items(ctx context.Context, owner, slug string) ([]models.CartItem, error)
	Item(ctx context.Context, owner, slug, productID string) (*models.CartItem, error)
	AddItem(ctx context.Context, owner, slug string, item models.CartItem) (*models.CartItem, error)
	SetQuantity(ctx context.Context, owner, slug, productID string, qty int) (*models.CartItem, bool, error)
	RemoveItem(ctx context.Context, owner, slug, productID string) (bool, error)
	Clear(ctx context.Context, owner, slug string) error
	Merge(ctx context.Context, from, to, slug string) (int, error)

	WishlistItems(ctx context.Context, owner, slug string) ([]models.WishlistItem, error)
	ToggleWishlist(ctx context.Context, owner, slug string, item models.WishlistItem) (bool, error)
	RemoveWishlist(ctx context.Context, owner, slug, productID string) (bool, error)
	InWishlist(ctx context.Context, owner, slug, productID string) (bool, error)

	ClaimIdempotency(ctx context.Context, owner, key string, ttl time.Duration) ([]byte, bool, error)
	StoreIdempotency(ctx context.Context, owner, key string, response []byte, ttl time.Duration) error
	ReleaseIdempotency(ctx context.Context, owner, key string) error
}

// Metrics is satisfied by *awspkg.MetricsClient.
type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

type CartService interface {
	GetCart(ctx context.Context, owner, slug string) (*models.Cart, *ServiceError)
	AddItem(ctx context.Context, owner, slug string, req models.AddItemRequest) (*models.Cart, *ServiceError)
	SetQuantity(ctx context.Context, owner, slug, productID string, qty int) (*models.Cart, *ServiceError)
	RemoveItem(ctx context.Context, owner, slug, productID string) (*models.Cart, *ServiceError)
	ItemStatus(ctx context.Context, owner, slug, productID string) (*models.ItemStatus, *ServiceError)
	ClearCart(ctx context.Context, owner, slug string) *ServiceError
	MergeGuest(ctx context.Context, guest, owner, slug string) (*models.Cart, int, *ServiceError)
	Checkout(ctx context.Context, caller *middleware.Identity, owner, slug, idempotencyKey string, req models.CheckoutRequest) (*models.OrderResponse, bool, *ServiceError)

	Wishlist(ctx context.Context, owner, slug string) ([]models.WishlistItem, *ServiceError)
	ToggleWishlist(ctx context.Context, owner, slug string, item models.WishlistItem) (bool, *ServiceError)
	RemoveFromWishlist(ctx context.Context, owner, slug, productID string) *ServiceError
	InWishlist(ctx context.Context, owner, slug, productID string) (bool, *ServiceError)
}

type cartServiceImpl struct {
	store          CartStore
	orders         OrderPlacer
	metrics        Metrics
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

func NewCartService(store CartStore, orders OrderPlacer, metrics Metrics, idempotencyTTL time.Duration, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		store:          store,
		orders:         orders,
		metrics:        metrics,
		idempotencyTTL: idempotencyTTL,
		logger:         logger,
	}
}

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

	errStore      = &ServiceError{StatusCode: 500, Message: "cart store unavailable"}
	errBadSlug    = &ServiceError{StatusCode: 400, Message: "invalid shop slug"}
	errNoProduct  = &ServiceError{StatusCode: 400, Message: "product_id is required"}
	errInProgress = &ServiceError{StatusCode: 409, Message: "a checkout with this idempotency key is already in progress"}
)

func normalizeSlug(slug string) (string, *ServiceError) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return "", errBadSlug
	}
	return slug, nil
}

// BuildCart derives count (sum of quantities) and total (sum of
// price x quantity, 2 dp) from the lines.
func BuildCart(slug string, items []models.CartItem) *models.Cart {
	if items == nil {
		items = []models.CartItem{}
	}
	total := decimal.Zero
	count := 0
	for _, it := range items {
		count += it.Quantity
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &models.Cart{
		ShopSlug: slug,
		Items:    items,
		Count:    count,
		Total:    total.Round(2).InexactFloat64(),
	}
}

func (s *cartServiceImpl) GetCart(ctx context.Context, owner, slug string) (*models.Cart, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.load(ctx, owner, slug)
}

func (s *cartServiceImpl) AddItem(ctx context.Context, owner, slug string, req models.AddItemRequest) (*models.Cart, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, svcErr
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, errNoProduct
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	item := models.CartItem{
		ProductID: productID,
		Name:      strings.TrimSpace(req.Name),
		Price:     req.Price,
		Quantity:  qty,
		ImageURL:  req.ImageURL,
	}
	if _, err := s.store.AddItem(ctx, owner, slug, item); err != nil {
		s.logger.Error("Failed to add cart item", zap.String("owner", owner), zap.String("slug", slug), zap.Error(err))
		return nil, errStore
	}
	return s.load(ctx, owner, slug)
}

func (s *cartServiceImpl) SetQuantity(ctx context.Context, owner, slug, productID string, qty int) (*models.Cart, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, svcErr
	}
	if qty < 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "quantity must not be negative"}
	}
	_, found, err := s.store.SetQuantity(ctx, owner, slug, productID, qty)
	if err != nil {
		s.logger.Error("Failed to update cart item", zap.String("owner", owner), zap.String("product_id", productID), zap.Error(err))
		return nil, errStore
	}
	if !found {
		return nil, &ServiceError{StatusCode: 404, Message: "product not in cart"}
	}
	return s.load(ctx, owner, slug)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, owner, slug, productID string) (*models.Cart, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, svcErr
	}
	if _, err := s.store.RemoveItem(ctx, owner, slug, productID); err != nil {
		s.logger.Error("Failed to remove cart item", zap.String("owner", owner), zap.String("product_id", productID), zap.Error(err))
		return nil, errStore
	}
	return s.load(ctx, owner, slug)
}

func (s *cartServiceImpl) ItemStatus(ctx context.Context, owner, slug, productID string) (*models.ItemStatus, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, svcErr
	}
	item, err := s.store.Item(ctx, owner, slug, productID)
	if err != nil {
		s.logger.Error("Failed to read cart item", zap.String("owner", owner), zap.Error(err))
		return nil, errStore
	}
	if item == nil {
		return &models.ItemStatus{}, nil
	}
	return &models.ItemStatus{InCart: true, Quantity: item.Quantity}, nil
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, owner, slug string) *ServiceError {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return svcErr
	}
	if err := s.store.Clear(ctx, owner, slug); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("owner", owner), zap.Error(err))
		return errStore
	}
	return nil
}

// MergeGuest moves the guest's lines into owner's cart after login.
func (s *cartServiceImpl) MergeGuest(ctx context.Context, guest, owner, slug string) (*models.Cart, int, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, 0, svcErr
	}
	if guest == "" || guest == owner {
		cart, svcErr := s.load(ctx, owner, slug)
		return cart, 0, svcErr
	}
	moved, err := s.store.Merge(ctx, guest, owner, slug)
	if err != nil {
		s.logger.Error("Failed to merge guest cart", zap.String("guest", guest), zap.String("owner", owner), zap.Error(err))
		return nil, 0, errStore
	}
	if moved > 0 {
		s.logger.Info("Guest cart merged", zap.String("owner", owner), zap.String("slug", slug), zap.Int("lines", moved))
	}
	cart, svcErr := s.load(ctx, owner, slug)
	return cart, moved, svcErr
}

// Checkout turns the cart into an order. With an idempotency key the first
// outcome is stored and replayed; the bool reports a replay.
func (s *cartServiceImpl) Checkout(ctx context.Context, caller *middleware.Identity, owner, slug, idempotencyKey string, req models.CheckoutRequest) (*models.OrderResponse, bool, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, false, svcErr
	}

	if idempotencyKey != "" {
		stored, claimed, err := s.store.ClaimIdempotency(ctx, owner, idempotencyKey, s.idempotencyTTL)
		if err != nil {
			s.logger.Error("Failed to claim idempotency key", zap.String("owner", owner), zap.Error(err))
			return nil, false, errStore
		}
		if !claimed {
			if stored == nil {
				return nil, false, errInProgress
			}
			var replay models.OrderResponse
			if err := json.Unmarshal(stored, &replay); err != nil {
				s.logger.Error("Corrupt idempotent response", zap.String("owner", owner), zap.Error(err))
				return nil, false, errStore
			}
			return &replay, true, nil
		}
	}

	resp, svcErr := s.placeOrder(ctx, caller, owner, slug, req)
	if svcErr != nil {
		if idempotencyKey != "" {
			if err := s.store.ReleaseIdempotency(ctx, owner, idempotencyKey); err != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
		return nil, false, svcErr
	}

	if idempotencyKey != "" {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.store.StoreIdempotency(ctx, owner, idempotencyKey, raw, s.idempotencyTTL); err != nil {
				s.logger.Warn("Failed to store idempotent response", zap.Error(err))
			}
		}
	}
	return resp, false, nil
}

func (s *cartServiceImpl) placeOrder(ctx context.Context, caller *middleware.Identity, owner, slug string, req models.CheckoutRequest) (*models.OrderResponse, *ServiceError) {
	items, err := s.store.Items(ctx, owner, slug)
	if err != nil {
		s.logger.Error("Failed to load cart for checkout", zap.String("owner", owner), zap.Error(err))
		return nil, errStore
	}
	if len(items) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "cart is empty"}
	}

	order := models.OrderRequest{
		ShopID:    req.ShopID,
		Customer:  req.Customer,
		Shipping:  req.Shipping,
		Payment:   req.Payment,
		PromoCode: strings.TrimSpace(req.PromoCode),
		Notes:     strings.TrimSpace(req.Notes),
		Items:     make([]models.OrderLine, len(items)),
	}
	for i, it := range items {
		order.Items[i] = models.OrderLine{ProductID: it.ProductID, Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}

	resp, err := s.orders.PlaceOrder(ctx, caller, order)
	if err != nil {
		var se *client.StatusError
		if errors.As(err, &se) && se.StatusCode < 500 {
			return nil, &ServiceError{StatusCode: se.StatusCode, Message: se.Message}
		}
		s.logger.Error("Order service call failed", zap.String("owner", owner), zap.String("slug", slug), zap.Error(err))
		return nil, &ServiceError{StatusCode: 502, Message: "failed to place order"}
	}

	if err := s.store.Clear(ctx, owner, slug); err != nil {
		s.logger.Warn("Failed to clear cart after checkout", zap.String("owner", owner), zap.String("order_id", resp.OrderID), zap.Error(err))
	}
	s.metrics.RecordAsync(awspkg.MetricCartCheckouts, map[string]string{"ShopSlug": slug})
	s.logger.Info("Cart checked out",
		zap.String("owner", owner),
		zap.String("slug", slug),
		zap.String("order_id", resp.OrderID),
		zap.Int("lines", len(items)),
	)
	return resp, nil
}

func (s *cartServiceImpl) Wishlist(ctx context.Context, owner, slug string) ([]models.WishlistItem, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return nil, svcErr
	}
	items, err := s.store.WishlistItems(ctx, owner, slug)
	if err != nil {
		s.logger.Error("Failed to load wishlist", zap.String("owner", owner), zap.Error(err))
		return nil, errStore
	}
	return items, nil
}

func (s *cartServiceImpl) ToggleWishlist(ctx context.Context, owner, slug string, item models.WishlistItem) (bool, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return false, svcErr
	}
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		return false, errNoProduct
	}
	item.AddedAt = time.Now().UTC()
	in, err := s.store.ToggleWishlist(ctx, owner, slug, item)
	if err != nil {
		s.logger.Error("Failed to toggle wishlist", zap.String("owner", owner), zap.Error(err))
		return false, errStore
	}
	return in, nil
}

func (s *cartServiceImpl) RemoveFromWishlist(ctx context.Context, owner, slug, productID string) *ServiceError {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return svcErr
	}
	if _, err := s.store.RemoveWishlist(ctx, owner, slug, productID); err != nil {
		s.logger.Error("Failed to remove wishlist item", zap.String("owner", owner), zap.Error(err))
		return errStore
	}
	return nil
}

func (s *cartServiceImpl) InWishlist(ctx context.Context, owner, slug, productID string) (bool, *ServiceError) {
	slug, svcErr := normalizeSlug(slug)
	if svcErr != nil {
		return false, svcErr
	}
	in, err := s.store.InWishlist(ctx, owner, slug, productID)
	if err != nil {
		s.logger.Error("Failed to read wishlist", zap.String("owner", owner), zap.Error(err))
		return false, errStore
	}
	return in, nil
}

func (s *cartServiceImpl) load(ctx context.Context, owner, slug string) (*models.Cart, *ServiceError) {
	items, err := s.store.Items(ctx, owner, slug)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("owner", owner), zap.String("slug", slug), zap.Error(err))
		return nil, errStore
	}
	return BuildCart(slug, items), nil
}
