package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus means the order left the expected status before the
	// update landed.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// ListFilter narrows shop order listings. A nil ShopID lists every shop.
type ListFilter struct {
	ShopID *uuid.UUID
	Status string
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, first *models.OrderStatusHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]models.Order, int64, error)
	FindByShop(ctx context.Context, filter ListFilter, p pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus string, updates map[string]interface{}, entry *models.OrderStatusHistory) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error
	History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create stores the order, its items and the first history entry together.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order, first *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if first != nil {
			return tx.Create(first).Error
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	return r.page(query, p)
}

func (r *GormOrderRepository) FindByShop(ctx context.Context, filter ListFilter, p pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.ShopID != nil {
		query = query.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.Status != "" {
		query = query.Where("order_status = ?", filter.Status)
	}
	return r.page(query, p)
}

func (r *GormOrderRepository) page(query *gorm.DB, p pagination.Params) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus applies updates only while the order is still in fromStatus
// and appends the history entry in the same transaction.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus string, updates map[string]interface{}, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND order_status = ?", id, fromStatus).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}
		return tx.Create(entry).Error
	})
}

func (r *GormOrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
