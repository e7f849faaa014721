package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
	repositories "github.com/Khizarkk7/storefront-backend/services/order-service/repository"
)

type memOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*models.Order
	history []models.OrderStatusHistory
	failAdd error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order, first *models.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd != nil {
		return r.failAdd
	}
	cp := *order
	r.orders[order.ID] = &cp
	if first != nil {
		r.history = append(r.history, *first)
	}
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, _ pagination.Params) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) FindByShop(_ context.Context, f repositories.ListFilter, _ pagination.Params) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if f.ShopID != nil && o.ShopID != *f.ShopID {
			continue
		}
		if f.Status != "" && o.OrderStatus != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from string, updates map[string]interface{}, entry *models.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.OrderStatus != from {
		return repositories.ErrStaleStatus
	}
	for k, v := range updates {
		switch k {
		case "order_status":
			o.OrderStatus = v.(string)
		case "payment_status":
			o.PaymentStatus = v.(string)
		case "stock_state":
			o.StockState = v.(string)
		}
	}
	r.history = append(r.history, *entry)
	return nil
}

func (r *memOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (r *memOrderRepo) History(_ context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OrderStatusHistory
	for _, h := range r.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	products map[string]*CatalogProduct
	err      error
	lookups  int
}

func (f *fakeCatalog) Product(_ context.Context, id string) (*CatalogProduct, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, &client.StatusError{StatusCode: 404, Message: "product not found"}
	}
	return p, nil
}

type fakeInventory struct {
	reserveErr error
	confirmErr error
	reserved   []string
	released   []string
	confirmed  []string
	returned   [][]StockLine
}

func (f *fakeInventory) Reserve(_ context.Context, orderID string, _ []StockLine) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved = append(f.reserved, orderID)
	return nil
}

func (f *fakeInventory) Release(_ context.Context, orderID string, _ []StockLine) error {
	f.released = append(f.released, orderID)
	return nil
}

func (f *fakeInventory) Confirm(_ context.Context, orderID string, _ []StockLine) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, orderID)
	return nil
}

func (f *fakeInventory) Return(_ context.Context, lines []StockLine) error {
	f.returned = append(f.returned, lines)
	return nil
}

type fakePromos struct {
	result      *PromoResult
	validateErr error
	redeemed    []string
}

func (f *fakePromos) Validate(_ context.Context, _, _ string, _ float64) (*PromoResult, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if f.result == nil {
		return &PromoResult{Valid: false, Message: "unknown code"}, nil
	}
	return f.result, nil
}

func (f *fakePromos) Redeem(_ context.Context, code, _ string, _ float64) error {
	f.redeemed = append(f.redeemed, code)
	return nil
}

type published struct {
	eventType string
	data      any
}

type recordingPublisher struct {
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data any) {
	p.events = append(p.events, published{eventType, data})
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type countingMetrics struct {
	counts map[string]int
}

func (m *countingMetrics) RecordAsync(name string, _ map[string]string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[name]++
}
