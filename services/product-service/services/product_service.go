package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
	"github.com/Khizarkk7/storefront-backend/services/product-service/models"
	"github.com/Khizarkk7/storefront-backend/services/product-service/repository"
)

const PresignExpiry = 15 * time.Minute

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ObjectStorage is satisfied by *awspkg.ObjectStore.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, map[string]string, error)
	PublicURL(key string) string
}

// ListCache is satisfied by *cache.JSONCache.
type ListCache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, v any) error
	Version(ctx context.Context, scope string) (int64, error)
	Bump(ctx context.Context, scope string) (int64, error)
}

type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

type ProductService interface {
	ListByShop(ctx context.Context, shopID string, q models.ListQuery, p pagination.Params) (*models.ProductPage, *ServiceError)
	GetProduct(ctx context.Context, id string) (*models.ProductView, *ServiceError)
	CreateProduct(ctx context.Context, caller middleware.Identity, req *models.CreateProductRequest, image *models.ImageUpload) (*models.ProductView, *ServiceError)
	UpdateProduct(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateProductRequest, image *models.ImageUpload) (*models.ProductView, *ServiceError)
	DeleteProduct(ctx context.Context, caller middleware.Identity, id string) *ServiceError
	PresignImage(ctx context.Context, caller middleware.Identity, req *models.PresignRequest) (*models.PresignResponse, *ServiceError)
	ApplyStockChange(ctx context.Context, change events.StockChanged) error
}

type productServiceImpl struct {
	repo      repository.ProductRepository
	storage   ObjectStorage
	cache     ListCache
	inventory Inventory
	metrics   Metrics
	logger    *zap.Logger
}

func NewProductService(repo repository.ProductRepository, storage ObjectStorage, cache ListCache, inventory Inventory, metrics Metrics, logger *zap.Logger) ProductService {
	return &productServiceImpl{
		repo:      repo,
		storage:   storage,
		cache:     cache,
		inventory: inventory,
		metrics:   metrics,
		logger:    logger,
	}
}

var errProductNotFound = &ServiceError{StatusCode: 404, Message: "product not found"}

// ListByShop serves a page of the shop's catalogue. Pages are cached under
// the shop's cache version, which every write bumps.
func (s *productServiceImpl) ListByShop(ctx context.Context, shopID string, q models.ListQuery, p pagination.Params) (*models.ProductPage, *ServiceError) {
	if _, err := uuid.Parse(shopID); err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid shop id"}
	}
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status != "" && !stock.ValidStatus(q.Status) {
		return nil, &ServiceError{StatusCode: 400, Message: "status must be one of active, low_stock, out_of_stock"}
	}
	q.Search = strings.TrimSpace(q.Search)

	var cacheKey string
	if ver, err := s.cache.Version(ctx, shopID); err == nil {
		cacheKey = fmt.Sprintf("list:%s:v%d:%s:%s:%d:%d", shopID, ver, q.Status, strings.ToLower(q.Search), p.Page, p.Limit)
		var cached models.ProductPage
		if s.cache.Get(ctx, cacheKey, &cached) {
			s.metrics.RecordAsync(awspkg.MetricCacheHits, map[string]string{"Cache": "products"})
			return &cached, nil
		}
		s.metrics.RecordAsync(awspkg.MetricCacheMisses, map[string]string{"Cache": "products"})
	}

	products, total, err := s.repo.FindByShop(ctx, shopID, q, p)
	if err != nil {
		s.logger.Error("Failed to list products", zap.String("shop_id", shopID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list products"}
	}
	summary, err := s.repo.Summarize(ctx, shopID, q.Search)
	if err != nil {
		s.logger.Error("Failed to summarize products", zap.String("shop_id", shopID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list products"}
	}

	page := &models.ProductPage{
		Data:    make([]models.ProductView, len(products)),
		Meta:    pagination.NewMeta(p, total),
		Summary: summary,
	}
	for i := range products {
		page.Data[i] = s.view(&products[i])
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, page); err != nil {
			s.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}
	return page, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id string) (*models.ProductView, *ServiceError) {
	product, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	view := s.view(product)
	return &view, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, caller middleware.Identity, req *models.CreateProductRequest, image *models.ImageUpload) (*models.ProductView, *ServiceError) {
	if !caller.CanAccessShop(req.ShopID) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	name := strings.TrimSpace(req.ProductName)
	if len(name) < 3 {
		return nil, &ServiceError{StatusCode: 400, Message: "product_name must be at least 3 characters"}
	}
	if req.Price <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "price must be greater than 0"}
	}
	quantity := 0
	if req.StockQuantity != nil {
		quantity = *req.StockQuantity
	}
	if quantity < 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "stock_quantity cannot be negative"}
	}
	threshold := req.LowStockThreshold
	if threshold <= 0 {
		threshold = stock.DefaultLowStockThreshold
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:                uuid.NewString(),
		ShopID:            req.ShopID,
		ProductName:       name,
		Description:       strings.TrimSpace(req.Description),
		Price:             req.Price,
		ImageURL:          strings.TrimSpace(req.ImageURL),
		StockQuantity:     quantity,
		LowStockThreshold: threshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	switch {
	case image != nil:
		key, svcErr := s.uploadImage(ctx, product.ShopID, image)
		if svcErr != nil {
			return nil, svcErr
		}
		product.ImageKey = key
	case req.ImageKey != "":
		if !ownsKey(product.ShopID, req.ImageKey) {
			return nil, &ServiceError{StatusCode: 400, Message: "image_key does not belong to this shop"}
		}
		product.ImageKey = req.ImageKey
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.discardImage(ctx, image, product.ImageKey)
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create product"}
	}

	// Orders reserve against inventory-service, so a product without a stock
	// row would be unsellable; undo the insert instead.
	err := s.inventory.RegisterStock(ctx, caller, StockRegistration{
		ProductID:   product.ID,
		ShopID:      product.ShopID,
		ProductName: product.ProductName,
		Price:       product.Price,
		Quantity:    product.StockQuantity,
		Threshold:   product.LowStockThreshold,
	})
	if err != nil {
		s.logger.Error("Failed to register stock, rolling back product",
			zap.String("product_id", product.ID), zap.Error(err))
		if delErr := s.repo.SoftDelete(ctx, product.ID); delErr != nil {
			s.logger.Error("Rollback of product failed", zap.String("product_id", product.ID), zap.Error(delErr))
		}
		s.discardImage(ctx, image, product.ImageKey)
		return nil, &ServiceError{StatusCode: 502, Message: "inventory service unavailable"}
	}

	s.invalidate(ctx, product.ShopID)
	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("shop_id", product.ShopID))
	view := s.view(product)
	return &view, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateProductRequest, image *models.ImageUpload) (*models.ProductView, *ServiceError) {
	product, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.CanAccessShop(product.ShopID) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}

	if req.ProductName != nil {
		name := strings.TrimSpace(*req.ProductName)
		if len(name) < 3 {
			return nil, &ServiceError{StatusCode: 400, Message: "product_name must be at least 3 characters"}
		}
		product.ProductName = name
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "price must be greater than 0"}
		}
		product.Price = *req.Price
	}
	if req.LowStockThreshold != nil && *req.LowStockThreshold > 0 {
		product.LowStockThreshold = *req.LowStockThreshold
	}

	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "stock_quantity cannot be negative"}
		}
		delta := *req.StockQuantity - product.StockQuantity
		if err := s.inventory.AdjustStock(ctx, caller, product.ID, delta); err != nil {
			return nil, s.inventoryError(product.ID, err)
		}
		product.StockQuantity = *req.StockQuantity
	}

	oldKey := product.ImageKey
	switch {
	case image != nil:
		key, svcErr := s.uploadImage(ctx, product.ShopID, image)
		if svcErr != nil {
			return nil, svcErr
		}
		product.ImageKey = key
	case req.ImageKey != nil && *req.ImageKey != product.ImageKey:
		if *req.ImageKey != "" && !ownsKey(product.ShopID, *req.ImageKey) {
			return nil, &ServiceError{StatusCode: 400, Message: "image_key does not belong to this shop"}
		}
		product.ImageKey = *req.ImageKey
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProductNotFound
		}
		s.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to update product"}
	}
	if oldKey != "" && oldKey != product.ImageKey {
		if err := s.storage.Delete(ctx, oldKey); err != nil {
			s.logger.Warn("Failed to delete replaced image", zap.String("key", oldKey), zap.Error(err))
		}
	}

	s.invalidate(ctx, product.ShopID)
	view := s.view(product)
	return &view, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, caller middleware.Identity, id string) *ServiceError {
	product, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if !caller.CanAccessShop(product.ShopID) {
		return &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errProductNotFound
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to delete product"}
	}
	s.invalidate(ctx, product.ShopID)
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *productServiceImpl) PresignImage(ctx context.Context, caller middleware.Identity, req *models.PresignRequest) (*models.PresignResponse, *ServiceError) {
	if !caller.CanAccessShop(req.ShopID) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	key, ok := presignKey(req.ShopID, req.Filename, req.ContentType)
	if !ok {
		return nil, &ServiceError{StatusCode: 400, Message: "content_type must be image/jpeg, image/png, image/webp or image/gif"}
	}
	url, headers, err := s.storage.PresignPut(ctx, key, req.ContentType, PresignExpiry)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to generate upload url"}
	}
	return &models.PresignResponse{
		UploadURL: url,
		Method:    "PUT",
		Key:       key,
		PublicURL: s.storage.PublicURL(key),
		Headers:   headers,
		ExpiresIn: int(PresignExpiry.Seconds()),
	}, nil
}

// ApplyStockChange mirrors inventory's available quantity onto the product.
// Unknown products and events older than the last applied version are
// skipped.
func (s *productServiceImpl) ApplyStockChange(ctx context.Context, change events.StockChanged) error {
	product, err := s.repo.SetStockQuantity(ctx, change.ProductID, change.Available, change.Version)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Stock change for unknown product", zap.String("product_id", change.ProductID))
			return nil
		}
		if errors.Is(err, repository.ErrStaleStock) {
			s.logger.Debug("Stale stock change skipped",
				zap.String("product_id", change.ProductID), zap.Int64("version", change.Version))
			return nil
		}
		return fmt.Errorf("set stock quantity: %w", err)
	}
	s.invalidate(ctx, product.ShopID)
	return nil
}

func (s *productServiceImpl) load(ctx context.Context, id string) (*models.Product, *ServiceError) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid product id"}
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProductNotFound
		}
		s.logger.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load product"}
	}
	return product, nil
}

func (s *productServiceImpl) uploadImage(ctx context.Context, shopID string, image *models.ImageUpload) (string, *ServiceError) {
	data, contentType, ext, svcErr := readImage(image)
	if svcErr != nil {
		return "", svcErr
	}
	key := imageKey(shopID, ext)
	if err := s.storage.Upload(ctx, key, contentType, readerOf(data)); err != nil {
		s.logger.Error("Failed to upload image", zap.String("key", key), zap.Error(err))
		return "", &ServiceError{StatusCode: 502, Message: "failed to upload image"}
	}
	return key, nil
}

// discardImage removes an image this request uploaded itself.
func (s *productServiceImpl) discardImage(ctx context.Context, image *models.ImageUpload, key string) {
	if image == nil || key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete orphaned image", zap.String("key", key), zap.Error(err))
	}
}

func (s *productServiceImpl) invalidate(ctx context.Context, shopID string) {
	if _, err := s.cache.Bump(ctx, shopID); err != nil {
		s.logger.Warn("Failed to bump product cache version", zap.String("shop_id", shopID), zap.Error(err))
	}
}

func (s *productServiceImpl) inventoryError(productID string, err error) *ServiceError {
	var se *client.StatusError
	if errors.As(err, &se) && se.StatusCode < 500 {
		return &ServiceError{StatusCode: se.StatusCode, Message: se.Message}
	}
	s.logger.Error("Inventory call failed", zap.String("product_id", productID), zap.Error(err))
	return &ServiceError{StatusCode: 502, Message: "inventory service unavailable"}
}

func (s *productServiceImpl) view(p *models.Product) models.ProductView {
	v := models.ProductView{Product: *p, Status: p.Status()}
	if p.ImageKey != "" {
		v.ImageURL = s.storage.PublicURL(p.ImageKey)
	}
	return v
}
