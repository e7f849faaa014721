package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
)

var ErrNotFound = errors.New("record not found")

type ShopRepository interface {
	FindAll(ctx context.Context, filter models.ListFilter, p pagination.Params) ([]models.Shop, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Shop, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, shop *models.Shop) error
	Save(ctx context.Context, shop *models.Shop) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) FindAll(ctx context.Context, filter models.ListFilter, p pagination.Params) ([]models.Shop, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Shop{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(shop_name) LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var shops []models.Shop
	if err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, mapErr(err)
	}
	return &shop, nil
}

func (r *GormShopRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", strings.ToLower(slug), true).
		First(&shop).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &shop, nil
}

// SlugExists also sees soft-deleted shops: their slugs stay reserved.
func (r *GormShopRepository) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&models.Shop{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *GormShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *GormShopRepository) Save(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

// Deactivate flips is_active and soft-deletes in one transaction.
func (r *GormShopRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Shop{}).Where("id = ?", id).Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).Delete(&models.Shop{}).Error
	})
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
