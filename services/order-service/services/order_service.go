package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
	repositories "github.com/Khizarkk7/storefront-backend/services/order-service/repository"
)

type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any)
}

// Metrics is satisfied by *awspkg.MetricsClient.
type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

type OrderService interface {
	CreateOrder(ctx context.Context, caller middleware.Identity, req *models.CreateOrderRequest) (*models.CreateOrderResponse, *ServiceError)
	GetOrder(ctx context.Context, id string) (*models.Order, *ServiceError)
	ListMyOrders(ctx context.Context, caller middleware.Identity, p pagination.Params) ([]models.Order, int64, *ServiceError)
	ListShopOrders(ctx context.Context, caller middleware.Identity, shopID, status string, p pagination.Params) ([]models.Order, int64, *ServiceError)
	ListAllOrders(ctx context.Context, caller middleware.Identity, status string, p pagination.Params) ([]models.Order, int64, *ServiceError)
	UpdateStatus(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateStatusRequest) (*models.Order, *ServiceError)
	CancelOrder(ctx context.Context, caller middleware.Identity, id, reason string) (*models.Order, *ServiceError)
	History(ctx context.Context, id string) ([]models.OrderStatusHistory, *ServiceError)
	ApplyPayment(ctx context.Context, eventType string, result events.PaymentResult) error
}

type orderServiceImpl struct {
	repo      repositories.OrderRepository
	catalog   Catalog
	inventory Inventory
	promos    Promotions
	pricing   Pricing
	events    EventPublisher
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(repo repositories.OrderRepository, catalog Catalog, inventory Inventory, promos Promotions, pricing Pricing, publisher EventPublisher, metrics Metrics, logger *zap.Logger) OrderService {
	return &orderServiceImpl{
		repo:      repo,
		catalog:   catalog,
		inventory: inventory,
		promos:    promos,
		pricing:   pricing,
		events:    publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

var (
	errOrderNotFound = &ServiceError{StatusCode: 404, Message: "order not found"}
	errInvalidID     = &ServiceError{StatusCode: 400, Message: "invalid order id"}
)

// ErrUnknownOrder is returned by ApplyPayment for events about orders this
// service never stored.
var ErrUnknownOrder = errors.New("unknown order")

func (s *orderServiceImpl) CreateOrder(ctx context.Context, caller middleware.Identity, req *models.CreateOrderRequest) (*models.CreateOrderResponse, *ServiceError) {
	method := strings.ToLower(strings.TrimSpace(req.Payment.Method))
	orderStatus, paymentStatus, requiresPayment, ok := paymentBranch(method)
	if !ok {
		return nil, &ServiceError{StatusCode: 400, Message: "unsupported payment method: " + req.Payment.Method}
	}
	shopID, err := uuid.Parse(req.ShopID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid shop id"}
	}
	if svcErr := validateOrderInput(req); svcErr != nil {
		return nil, svcErr
	}
	items, svcErr := s.priceItems(ctx, shopID.String(), req.Items)
	if svcErr != nil {
		return nil, svcErr
	}

	subtotal := Subtotal(items)
	discount := decimal.Zero
	freeShipping := false
	promoCode := strings.ToUpper(strings.TrimSpace(req.PromoCode))
	if promoCode != "" {
		f, _ := subtotal.Float64()
		res, err := s.promos.Validate(ctx, promoCode, shopID.String(), f)
		if err != nil {
			s.logger.Error("Promo validation failed", zap.String("code", promoCode), zap.Error(err))
			return nil, &ServiceError{StatusCode: 502, Message: "promotion service unavailable"}
		}
		if !res.Valid {
			msg := "invalid promo code"
			if res.Message != "" {
				msg += ": " + res.Message
			}
			return nil, &ServiceError{StatusCode: 400, Message: msg}
		}
		discount = decimal.NewFromFloat(res.Discount)
		freeShipping = res.FreeShipping
	}
	totals := s.pricing.Compute(subtotal, discount, freeShipping)

	orderID := uuid.New()
	lines := make([]StockLine, len(items))
	for i, it := range items {
		lines[i] = StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	if err := s.inventory.Reserve(ctx, orderID.String(), lines); err != nil {
		return nil, s.upstreamError("reserve stock", err)
	}

	now := s.now()
	order := &models.Order{
		ID:              orderID,
		OrderNumber:     NewOrderNumber(now),
		ShopID:          shopID,
		CustomerName:    strings.TrimSpace(req.Customer.FullName),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		CustomerPhone:   strings.TrimSpace(req.Customer.Phone),
		ShippingAddress: strings.TrimSpace(req.Shipping.Address),
		City:            strings.TrimSpace(req.Shipping.City),
		Province:        strings.TrimSpace(req.Shipping.Province),
		PostalCode:      strings.TrimSpace(req.Shipping.PostalCode),
		Latitude:        req.Shipping.Latitude,
		Longitude:       req.Shipping.Longitude,
		Notes:           strings.TrimSpace(req.Notes),
		PaymentMethod:   method,
		OrderStatus:     orderStatus,
		PaymentStatus:   paymentStatus,
		StockState:      models.StockReserved,
		PromoCode:       promoCode,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.Shipping,
		Tax:             totals.Tax,
		Discount:        totals.Discount,
		GrandTotal:      totals.GrandTotal,
	}
	if caller.Authenticated() {
		if uid, err := uuid.Parse(caller.UserID); err == nil {
			order.UserID = &uid
		}
	}
	for _, it := range items {
		price := decimal.NewFromFloat(it.Price).Round(2)
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     price,
			LineTotal: price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
		})
	}
	first := &models.OrderStatusHistory{
		ID:        uuid.New(),
		OrderID:   orderID,
		ToStatus:  orderStatus,
		Note:      "order placed",
		ChangedBy: actor(caller),
	}

	if err := s.repo.Create(ctx, order, first); err != nil {
		s.logger.Error("Failed to save order", zap.String("order_id", orderID.String()), zap.Error(err))
		if relErr := s.inventory.Release(ctx, orderID.String(), lines); relErr != nil {
			s.logger.Error("Failed to release stock of unsaved order", zap.String("order_id", orderID.String()), zap.Error(relErr))
		}
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create order"}
	}

	if promoCode != "" {
		d, _ := totals.Discount.Float64()
		if err := s.promos.Redeem(ctx, promoCode, orderID.String(), d); err != nil {
			s.logger.Warn("Promo redemption failed", zap.String("order_id", orderID.String()), zap.String("code", promoCode), zap.Error(err))
		}
	}

	s.events.Publish(ctx, events.TypeOrderCreated, orderCreatedEvent(order))
	s.metrics.RecordAsync(awspkg.MetricOrdersCreated, map[string]string{"PaymentMethod": method})
	s.logger.Info("Order created",
		zap.String("order_id", orderID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_method", method),
	)

	grand, _ := order.GrandTotal.Float64()
	return &models.CreateOrderResponse{
		Success:         true,
		Message:         "Order placed successfully",
		OrderID:         orderID.String(),
		OrderNumber:     order.OrderNumber,
		OrderStatus:     order.OrderStatus,
		PaymentStatus:   order.PaymentStatus,
		RequiresPayment: requiresPayment,
		GrandTotal:      grand,
	}, nil
}

func validateOrderInput(req *models.CreateOrderRequest) *ServiceError {
	required := []struct{ name, value string }{
		{"customer.full_name", req.Customer.FullName},
		{"customer.email", req.Customer.Email},
		{"customer.phone", req.Customer.Phone},
		{"shipping.address", req.Shipping.Address},
		{"shipping.city", req.Shipping.City},
		{"shipping.province", req.Shipping.Province},
		{"shipping.postal_code", req.Shipping.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ServiceError{StatusCode: 400, Message: f.name + " is required"}
		}
	}
	if len(req.Items) == 0 {
		return &ServiceError{StatusCode: 400, Message: "at least one item is required"}
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return &ServiceError{StatusCode: 400, Message: "item product_id is required"}
		}
		if it.Quantity <= 0 {
			return &ServiceError{StatusCode: 400, Message: "item quantity must be greater than zero"}
		}
	}
	return nil
}

// priceItems replaces the name and price of every line with the catalog's.
// Lines for unknown, deleted or other shops' products reject the order.
func (s *orderServiceImpl) priceItems(ctx context.Context, shopID string, in []models.ItemInput) ([]models.ItemInput, *ServiceError) {
	seen := make(map[string]*CatalogProduct, len(in))
	out := make([]models.ItemInput, len(in))
	for i, it := range in {
		id := strings.TrimSpace(it.ProductID)
		p, ok := seen[id]
		if !ok {
			var err error
			p, err = s.catalog.Product(ctx, id)
			if err != nil {
				var se *client.StatusError
				if errors.As(err, &se) && (se.StatusCode == 404 || se.StatusCode == 400) {
					return nil, &ServiceError{StatusCode: 400, Message: "product not available: " + id}
				}
				return nil, s.upstreamError("load product", err)
			}
			seen[id] = p
		}
		if !strings.EqualFold(p.ShopID, shopID) {
			return nil, &ServiceError{StatusCode: 400, Message: "product " + id + " does not belong to this shop"}
		}
		if p.Price <= 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "product not available: " + id}
		}
		out[i] = models.ItemInput{ProductID: id, Name: p.ProductName, Price: p.Price, Quantity: it.Quantity}
	}
	return out, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id string) (*models.Order, *ServiceError) {
	return s.load(ctx, id)
}

func (s *orderServiceImpl) ListMyOrders(ctx context.Context, caller middleware.Identity, p pagination.Params) ([]models.Order, int64, *ServiceError) {
	userID, err := uuid.Parse(caller.UserID)
	if err != nil {
		return nil, 0, &ServiceError{StatusCode: 401, Message: "unauthorized"}
	}
	orders, total, err := s.repo.FindByUserID(ctx, userID, p)
	if err != nil {
		s.logger.Error("Failed to list user orders", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "failed to fetch orders"}
	}
	return orders, total, nil
}

func (s *orderServiceImpl) ListShopOrders(ctx context.Context, caller middleware.Identity, shopID, status string, p pagination.Params) ([]models.Order, int64, *ServiceError) {
	id, err := uuid.Parse(shopID)
	if err != nil {
		return nil, 0, &ServiceError{StatusCode: 400, Message: "invalid shop id"}
	}
	if !caller.CanAccessShop(id.String()) {
		return nil, 0, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	return s.list(ctx, repositories.ListFilter{ShopID: &id}, status, p)
}

// ListAllOrders spans every shop and is reserved for system admins.
func (s *orderServiceImpl) ListAllOrders(ctx context.Context, caller middleware.Identity, status string, p pagination.Params) ([]models.Order, int64, *ServiceError) {
	if !caller.IsSystemAdmin() {
		return nil, 0, &ServiceError{StatusCode: 403, Message: "forbidden"}
	}
	return s.list(ctx, repositories.ListFilter{}, status, p)
}

func (s *orderServiceImpl) list(ctx context.Context, filter repositories.ListFilter, status string, p pagination.Params) ([]models.Order, int64, *ServiceError) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !ValidStatus(status) {
		return nil, 0, &ServiceError{StatusCode: 400, Message: "invalid status filter"}
	}
	filter.Status = status
	orders, total, err := s.repo.FindByShop(ctx, filter, p)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "failed to fetch orders"}
	}
	return orders, total, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateStatusRequest) (*models.Order, *ServiceError) {
	to := strings.ToLower(strings.TrimSpace(req.Status))
	if !ValidStatus(to) {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid status: " + req.Status}
	}
	order, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.CanAccessShop(order.ShopID.String()) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this order"}
	}
	if svcErr := s.transition(ctx, order, to, strings.TrimSpace(req.Note), actor(caller), nil); svcErr != nil {
		return nil, svcErr
	}
	return order, nil
}

// CancelOrder is open to the customer who placed the order and to admins of
// its shop, until the order starts processing.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, caller middleware.Identity, id, reason string) (*models.Order, *ServiceError) {
	order, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	owner := order.UserID != nil && caller.UserID == order.UserID.String()
	if !owner && !caller.CanAccessShop(order.ShopID.String()) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this order"}
	}
	if !cancellable[order.OrderStatus] {
		return nil, &ServiceError{StatusCode: 409, Message: "order can no longer be cancelled"}
	}
	note := strings.TrimSpace(reason)
	if note == "" {
		note = "cancelled on request"
	}
	if svcErr := s.transition(ctx, order, models.StatusCancelled, note, actor(caller), nil); svcErr != nil {
		return nil, svcErr
	}
	return order, nil
}

func (s *orderServiceImpl) History(ctx context.Context, id string) ([]models.OrderStatusHistory, *ServiceError) {
	order, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	entries, err := s.repo.History(ctx, order.ID)
	if err != nil {
		s.logger.Error("Failed to load order history", zap.String("order_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load history"}
	}
	return entries, nil
}

// ApplyPayment folds a payment event into the order. Events for a payment
// state the order already has are ignored.
func (s *orderServiceImpl) ApplyPayment(ctx context.Context, eventType string, result events.PaymentResult) error {
	orderID, err := uuid.Parse(result.OrderID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownOrder, result.OrderID)
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownOrder, result.OrderID)
		}
		return err
	}

	switch eventType {
	case events.TypePaymentSucceeded:
		if order.PaymentStatus == models.PaymentPaid {
			return nil
		}
		if order.OrderStatus == models.StatusPendingPayment {
			note := "payment received via " + result.Provider
			extra := map[string]interface{}{"payment_status": models.PaymentPaid}
			if svcErr := s.transition(ctx, order, models.StatusConfirmed, note, "payment-service", extra); svcErr != nil {
				return svcErr
			}
			return nil
		}
		if err := s.repo.UpdatePaymentStatus(ctx, orderID, models.PaymentPaid); err != nil {
			return err
		}
	case events.TypePaymentFailed:
		if order.PaymentStatus == models.PaymentPaid || order.PaymentStatus == models.PaymentFailed {
			return nil
		}
		if err := s.repo.UpdatePaymentStatus(ctx, orderID, models.PaymentFailed); err != nil {
			return err
		}
	default:
		return nil
	}
	s.logger.Info("Payment applied",
		zap.String("order_id", result.OrderID),
		zap.String("event_type", eventType),
	)
	return nil
}

// transition moves order to status `to`, applying the stock and payment
// side effects, and updates order in place on success.
func (s *orderServiceImpl) transition(ctx context.Context, order *models.Order, to, note, changedBy string, extra map[string]interface{}) *ServiceError {
	from := order.OrderStatus
	if !CanTransition(from, to) {
		return &ServiceError{StatusCode: 400, Message: fmt.Sprintf("cannot change order status from %s to %s", from, to)}
	}

	updates := map[string]interface{}{"order_status": to}
	for k, v := range extra {
		updates[k] = v
	}
	lines := stockLines(order)
	id := order.ID.String()

	switch to {
	case models.StatusConfirmed:
		if order.StockState == models.StockReserved {
			if err := s.inventory.Confirm(ctx, id, lines); err != nil {
				return s.upstreamError("confirm stock", err)
			}
			updates["stock_state"] = models.StockConfirmed
		}
	case models.StatusDelivered:
		if order.PaymentMethod == models.MethodCOD {
			updates["payment_status"] = models.PaymentPaid
		}
	case models.StatusCancelled:
		updates["stock_state"] = models.StockReleased
	}

	entry := &models.OrderStatusHistory{
		ID:         uuid.New(),
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		ChangedBy:  changedBy,
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, from, updates, entry); err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return &ServiceError{StatusCode: 409, Message: "order status changed, reload and retry"}
		}
		s.logger.Error("Failed to update order status", zap.String("order_id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to update order status"}
	}

	if to == models.StatusCancelled {
		s.restock(ctx, order, lines)
		s.metrics.RecordAsync(awspkg.MetricOrdersCancelled, map[string]string{"From": from})
	}

	order.OrderStatus = to
	if v, ok := updates["payment_status"].(string); ok {
		order.PaymentStatus = v
	}
	if v, ok := updates["stock_state"].(string); ok {
		order.StockState = v
	}

	s.events.Publish(ctx, events.TypeOrderStatusChanged, events.OrderStatusChanged{
		OrderID:       id,
		OrderNumber:   order.OrderNumber,
		ShopID:        order.ShopID.String(),
		CustomerName:  order.CustomerName,
		Email:         order.CustomerEmail,
		Phone:         order.CustomerPhone,
		FromStatus:    from,
		ToStatus:      to,
		PaymentStatus: order.PaymentStatus,
		Note:          note,
	})
	s.logger.Info("Order status changed",
		zap.String("order_id", id),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("changed_by", changedBy),
	)
	return nil
}

// restock gives a cancelled order's units back: a live reservation is
// released, confirmed stock is added back.
func (s *orderServiceImpl) restock(ctx context.Context, order *models.Order, lines []StockLine) {
	var err error
	switch order.StockState {
	case models.StockReserved:
		err = s.inventory.Release(ctx, order.ID.String(), lines)
	case models.StockConfirmed:
		err = s.inventory.Return(ctx, lines)
	default:
		return
	}
	if err != nil {
		s.logger.Error("Failed to restock cancelled order",
			zap.String("order_id", order.ID.String()),
			zap.String("stock_state", order.StockState),
			zap.Error(err),
		)
	}
}

func (s *orderServiceImpl) load(ctx context.Context, id string) (*models.Order, *ServiceError) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, errInvalidID
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errOrderNotFound
		}
		s.logger.Error("Failed to load order", zap.String("order_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load order"}
	}
	return order, nil
}

// upstreamError keeps 4xx answers from another service (409 for short
// stock) and turns everything else into 502.
func (s *orderServiceImpl) upstreamError(op string, err error) *ServiceError {
	var se *client.StatusError
	if errors.As(err, &se) && se.StatusCode < 500 {
		status := se.StatusCode
		if status != 409 {
			status = 400
		}
		return &ServiceError{StatusCode: status, Message: se.Message}
	}
	s.logger.Error("Upstream call failed", zap.String("op", op), zap.Error(err))
	return &ServiceError{StatusCode: 502, Message: "failed to " + op}
}

func stockLines(order *models.Order) []StockLine {
	lines := make([]StockLine, len(order.Items))
	for i, it := range order.Items {
		lines[i] = StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

func orderCreatedEvent(order *models.Order) events.OrderCreated {
	grand, _ := order.GrandTotal.Float64()
	ev := events.OrderCreated{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		ShopID:        order.ShopID.String(),
		CustomerName:  order.CustomerName,
		Email:         order.CustomerEmail,
		Phone:         order.CustomerPhone,
		PaymentMethod: order.PaymentMethod,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		GrandTotal:    grand,
	}
	if order.UserID != nil {
		ev.UserID = order.UserID.String()
	}
	for _, it := range order.Items {
		price, _ := it.Price.Float64()
		ev.Items = append(ev.Items, events.OrderLine{ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: price})
	}
	return ev
}

func actor(caller middleware.Identity) string {
	if caller.UserID != "" {
		return caller.UserID
	}
	return "guest"
}
