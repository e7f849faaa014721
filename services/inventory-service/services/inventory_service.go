package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/models"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/repository"
)

const DefaultHistoryLimit = 50

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any)
}

type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

type InventoryService interface {
	ListByShop(ctx context.Context, shopID string, p pagination.Params) (*models.StockPage, *ServiceError)
	GetStock(ctx context.Context, productID string) (*models.StockView, *ServiceError)
	CreateStock(ctx context.Context, caller middleware.Identity, req *models.CreateStockRequest) (*models.StockView, bool, *ServiceError)
	AddQuantity(ctx context.Context, caller middleware.Identity, productID string, qty int) (*models.StockView, *ServiceError)
	ReduceQuantity(ctx context.Context, caller middleware.Identity, productID string, qty int) (*models.StockView, *ServiceError)
	History(ctx context.Context, caller middleware.Identity, productID string, limit int) ([]models.StockHistory, *ServiceError)
	CheckStock(ctx context.Context, items []models.LineItem) ([]models.StockCheckResult, bool, *ServiceError)
	Reserve(ctx context.Context, req *models.ItemsRequest) ([]models.StockCheckResult, *ServiceError)
	Release(ctx context.Context, req *models.ItemsRequest) *ServiceError
	Confirm(ctx context.Context, req *models.ItemsRequest) *ServiceError
}

type inventoryServiceImpl struct {
	repo      repository.InventoryRepository
	publisher EventPublisher
	metrics   Metrics
	logger    *zap.Logger
}

func NewInventoryService(repo repository.InventoryRepository, publisher EventPublisher, metrics Metrics, logger *zap.Logger) InventoryService {
	return &inventoryServiceImpl{repo: repo, publisher: publisher, metrics: metrics, logger: logger}
}

var errStockNotFound = &ServiceError{StatusCode: 404, Message: "stock not found for product"}

// ListByShop pages the shop's stock ordered by product name; the summary
// covers every row of the shop.
func (s *inventoryServiceImpl) ListByShop(ctx context.Context, shopID string, p pagination.Params) (*models.StockPage, *ServiceError) {
	if _, err := uuid.Parse(shopID); err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid shop id"}
	}
	rows, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		s.logger.Error("Failed to list stock", zap.String("shop_id", shopID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list stock"}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].ProductName) < strings.ToLower(rows[j].ProductName)
	})

	page := &models.StockPage{Meta: pagination.NewMeta(p, int64(len(rows)))}
	for i := range rows {
		page.Summary.Add(rows[i].Status())
	}
	paged := pagination.Slice(rows, p)
	page.Data = make([]models.StockView, len(paged))
	for i := range paged {
		page.Data[i] = models.NewStockView(&paged[i])
	}
	return page, nil
}

func (s *inventoryServiceImpl) GetStock(ctx context.Context, productID string) (*models.StockView, *ServiceError) {
	row, svcErr := s.load(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}
	view := models.NewStockView(row)
	return &view, nil
}

// CreateStock registers a product. A repeat call returns the existing row
// with created=false.
func (s *inventoryServiceImpl) CreateStock(ctx context.Context, caller middleware.Identity, req *models.CreateStockRequest) (*models.StockView, bool, *ServiceError) {
	if !caller.CanAccessShop(req.ShopID) {
		return nil, false, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = stock.DefaultLowStockThreshold
	}
	now := time.Now().UTC()
	row := &models.Stock{
		ProductID:   req.ProductID,
		ShopID:      req.ShopID,
		ProductName: strings.TrimSpace(req.ProductName),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Available:   req.Quantity,
		Threshold:   threshold,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			existing, svcErr := s.load(ctx, req.ProductID)
			if svcErr != nil {
				return nil, false, svcErr
			}
			view := models.NewStockView(existing)
			return &view, false, nil
		}
		s.logger.Error("Failed to create stock", zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, false, &ServiceError{StatusCode: 500, Message: "failed to create stock"}
	}

	s.record(ctx, row, models.ChangeInit, row.Quantity, 0, row.Quantity, actor(caller), "")
	s.afterChange(ctx, -1, row, models.ChangeInit)
	view := models.NewStockView(row)
	return &view, true, nil
}

func (s *inventoryServiceImpl) AddQuantity(ctx context.Context, caller middleware.Identity, productID string, qty int) (*models.StockView, *ServiceError) {
	return s.manualChange(ctx, caller, productID, qty, models.ChangeAdd)
}

// ReduceQuantity fails with 409 when fewer than qty units are unreserved.
func (s *inventoryServiceImpl) ReduceQuantity(ctx context.Context, caller middleware.Identity, productID string, qty int) (*models.StockView, *ServiceError) {
	return s.manualChange(ctx, caller, productID, qty, models.ChangeReduce)
}

func (s *inventoryServiceImpl) manualChange(ctx context.Context, caller middleware.Identity, productID string, qty int, change string) (*models.StockView, *ServiceError) {
	if qty <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "quantity must be greater than 0"}
	}
	current, svcErr := s.load(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.CanAccessShop(current.ShopID) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}

	var (
		updated *models.Stock
		err     error
	)
	if change == models.ChangeAdd {
		updated, err = s.repo.Add(ctx, productID, qty)
	} else {
		updated, err = s.repo.Reduce(ctx, productID, qty)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, errStockNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, &ServiceError{StatusCode: 409, Message: fmt.Sprintf("cannot reduce by %d: only %d units available", qty, current.Available)}
		}
		s.logger.Error("Failed to change stock", zap.String("product_id", productID), zap.String("change", change), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to update stock"}
	}

	delta := qty
	if change == models.ChangeReduce {
		delta = -qty
	}
	s.record(ctx, updated, change, qty, updated.Quantity-delta, updated.Quantity, actor(caller), "")
	s.afterChange(ctx, updated.Available-delta, updated, change)
	view := models.NewStockView(updated)
	return &view, nil
}

func (s *inventoryServiceImpl) History(ctx context.Context, caller middleware.Identity, productID string, limit int) ([]models.StockHistory, *ServiceError) {
	current, svcErr := s.load(ctx, productID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.CanAccessShop(current.ShopID) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	if limit <= 0 || limit > 200 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.repo.History(ctx, productID, limit)
	if err != nil {
		s.logger.Error("Failed to load stock history", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load stock history"}
	}
	return rows, nil
}

// CheckStock reports availability per line; unknown products are
// insufficient.
func (s *inventoryServiceImpl) CheckStock(ctx context.Context, items []models.LineItem) ([]models.StockCheckResult, bool, *ServiceError) {
	merged := mergeLines(items)
	results := make([]models.StockCheckResult, 0, len(merged))
	all := true
	for _, item := range merged {
		res := models.StockCheckResult{ProductID: item.ProductID, Requested: item.Quantity}
		row, err := s.repo.Get(ctx, item.ProductID)
		switch {
		case err == nil:
			res.Available = row.Available
			res.IsSufficient = row.Available >= item.Quantity
		case errors.Is(err, repository.ErrNotFound):
		default:
			s.logger.Error("Failed to check stock", zap.String("product_id", item.ProductID), zap.Error(err))
			return nil, false, &ServiceError{StatusCode: 500, Message: "failed to check stock"}
		}
		all = all && res.IsSufficient
		results = append(results, res)
	}
	return results, all, nil
}

// Reserve is all-or-nothing: when a line fails, lines already reserved are
// released again before returning.
func (s *inventoryServiceImpl) Reserve(ctx context.Context, req *models.ItemsRequest) ([]models.StockCheckResult, *ServiceError) {
	lines := mergeLines(req.Items)
	reserved := make([]models.StockCheckResult, 0, len(lines))

	for _, item := range lines {
		updated, err := s.repo.Reserve(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.rollback(ctx, req.OrderID, reserved)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return nil, &ServiceError{StatusCode: 409, Message: fmt.Sprintf("product %s is not stocked", item.ProductID)}
			case errors.Is(err, repository.ErrInsufficientStock):
				return nil, &ServiceError{StatusCode: 409, Message: fmt.Sprintf("insufficient stock for product %s", item.ProductID)}
			}
			s.logger.Error("Failed to reserve stock", zap.String("product_id", item.ProductID), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "failed to reserve stock"}
		}

		s.record(ctx, updated, models.ChangeReserve, item.Quantity, updated.Available+item.Quantity, updated.Available, "order", req.OrderID)
		s.afterChange(ctx, updated.Available+item.Quantity, updated, models.ChangeReserve)
		reserved = append(reserved, models.StockCheckResult{
			ProductID:    item.ProductID,
			Available:    updated.Available,
			Requested:    item.Quantity,
			IsSufficient: true,
		})
	}

	s.logger.Info("Stock reserved", zap.String("order_id", req.OrderID), zap.Int("lines", len(reserved)))
	return reserved, nil
}

func (s *inventoryServiceImpl) rollback(ctx context.Context, orderID string, reserved []models.StockCheckResult) {
	for _, r := range reserved {
		updated, err := s.repo.Release(ctx, r.ProductID, r.Requested)
		if err != nil {
			s.logger.Error("Rollback of reservation failed",
				zap.String("order_id", orderID), zap.String("product_id", r.ProductID), zap.Error(err))
			continue
		}
		s.record(ctx, updated, models.ChangeRelease, r.Requested, updated.Available-r.Requested, updated.Available, "order", orderID)
		s.afterChange(ctx, updated.Available-r.Requested, updated, models.ChangeRelease)
	}
}

// Release returns reserved units (order cancelled or payment failed).
// Every line is attempted; failures are logged.
func (s *inventoryServiceImpl) Release(ctx context.Context, req *models.ItemsRequest) *ServiceError {
	failed := 0
	for _, item := range mergeLines(req.Items) {
		updated, err := s.repo.Release(ctx, item.ProductID, item.Quantity)
		if err != nil {
			failed++
			s.logger.Warn("Failed to release stock",
				zap.String("order_id", req.OrderID), zap.String("product_id", item.ProductID), zap.Error(err))
			continue
		}
		s.record(ctx, updated, models.ChangeRelease, item.Quantity, updated.Available-item.Quantity, updated.Available, "order", req.OrderID)
		s.afterChange(ctx, updated.Available-item.Quantity, updated, models.ChangeRelease)
	}
	s.logger.Info("Stock released", zap.String("order_id", req.OrderID), zap.Int("failed", failed))
	return nil
}

// Confirm turns reservations into sales (payment succeeded).
func (s *inventoryServiceImpl) Confirm(ctx context.Context, req *models.ItemsRequest) *ServiceError {
	failed := 0
	for _, item := range mergeLines(req.Items) {
		updated, err := s.repo.Confirm(ctx, item.ProductID, item.Quantity)
		if err != nil {
			failed++
			s.logger.Warn("Failed to confirm stock",
				zap.String("order_id", req.OrderID), zap.String("product_id", item.ProductID), zap.Error(err))
			continue
		}
		s.record(ctx, updated, models.ChangeConfirm, item.Quantity, updated.Quantity+item.Quantity, updated.Quantity, "order", req.OrderID)
		s.afterChange(ctx, updated.Available, updated, models.ChangeConfirm)
	}
	s.logger.Info("Stock confirmed", zap.String("order_id", req.OrderID), zap.Int("failed", failed))
	return nil
}

func (s *inventoryServiceImpl) load(ctx context.Context, productID string) (*models.Stock, *ServiceError) {
	if strings.TrimSpace(productID) == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "missing product id"}
	}
	row, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errStockNotFound
		}
		s.logger.Error("Failed to load stock", zap.String("product_id", productID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load stock"}
	}
	return row, nil
}

// record writes a history row; a failure never undoes the stock change.
func (s *inventoryServiceImpl) record(ctx context.Context, row *models.Stock, change string, qty, prev, next int, by, orderID string) {
	h := &models.StockHistory{
		ProductID:        row.ProductID,
		HistoryID:        uuid.NewString(),
		ShopID:           row.ShopID,
		ChangeType:       change,
		QuantityChanged:  qty,
		PreviousQuantity: prev,
		NewQuantity:      next,
		OrderID:          orderID,
		ChangedBy:        by,
		ChangedAt:        time.Now().UTC(),
	}
	if err := s.repo.AppendHistory(ctx, h); err != nil {
		s.logger.Error("Failed to write stock history",
			zap.String("product_id", row.ProductID), zap.String("change", change), zap.Error(err))
	}
}

// afterChange publishes stock_changed and counts transitions into low or
// out of stock. prevAvailable < 0 means there was no previous row.
func (s *inventoryServiceImpl) afterChange(ctx context.Context, prevAvailable int, row *models.Stock, change string) {
	status := row.Status()
	s.publisher.Publish(ctx, events.TypeStockChanged, events.StockChanged{
		ProductID:  row.ProductID,
		ShopID:     row.ShopID,
		Quantity:   row.Quantity,
		Reserved:   row.Reserved,
		Available:  row.Available,
		Status:     status,
		ChangeType: change,
		Version:    row.Version,
	})
	if prevAvailable < 0 || stock.Classify(prevAvailable, row.Threshold) == status {
		return
	}
	dims := map[string]string{"ShopID": row.ShopID}
	switch status {
	case stock.StatusLowStock:
		s.metrics.RecordAsync(awspkg.MetricStockLow, dims)
		s.logger.Info("Product entered low stock",
			zap.String("product_id", row.ProductID), zap.Int("available", row.Available), zap.Int("threshold", row.Threshold))
	case stock.StatusOutOfStock:
		s.metrics.RecordAsync(awspkg.MetricStockOut, dims)
	}
}

// mergeLines sums quantities of repeated products, keeping first-seen order.
func mergeLines(items []models.LineItem) []models.LineItem {
	index := make(map[string]int, len(items))
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

func actor(caller middleware.Identity) string {
	if caller.UserID == "" {
		return "system"
	}
	return caller.UserID
}
