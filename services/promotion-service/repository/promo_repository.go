package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrExhausted = errors.New("promo code usage limit reached")
)

type PromoRepository interface {
	Create(ctx context.Context, promo *models.PromoCode) error
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	FindAll(ctx context.Context, shopID *uuid.UUID, p pagination.Params) ([]models.PromoCode, int64, error)
	Deactivate(ctx context.Context, code string) error
	Redeem(ctx context.Context, promo *models.PromoCode, orderID uuid.UUID, discount decimal.Decimal) (bool, error)
	Seed(ctx context.Context, promos []models.PromoCode) error
}

// GormPromoRepository implements PromoRepository using GORM.
type GormPromoRepository struct {
	db *gorm.DB
}

func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

func (r *GormPromoRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(promo).Error
}

// FindByCode matches case-insensitively and returns inactive codes too, so
// callers can tell "inactive" from "unknown".
func (r *GormPromoRepository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&promo).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &promo, nil
}

// FindAll lists newest first. A shop filter includes the all-shop codes.
func (r *GormPromoRepository) FindAll(ctx context.Context, shopID *uuid.UUID, p pagination.Params) ([]models.PromoCode, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PromoCode{})
	if shopID != nil {
		query = query.Where("shop_id = ? OR shop_id IS NULL", *shopID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var promos []models.PromoCode
	if err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

func (r *GormPromoRepository) Deactivate(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Redeem counts one use per order. A repeat for the same order returns
// true without touching the counter; a code at its limit yields
// ErrExhausted.
func (r *GormPromoRepository) Redeem(ctx context.Context, promo *models.PromoCode, orderID uuid.UUID, discount decimal.Decimal) (bool, error) {
	already := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Redemption{}).Where("order_id = ?", orderID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			already = true
			return nil
		}

		res := tx.Model(&models.PromoCode{}).
			Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", promo.ID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrExhausted
		}

		return tx.Create(&models.Redemption{
			ID:          uuid.New(),
			PromoCodeID: promo.ID,
			OrderID:     orderID,
			Discount:    discount,
		}).Error
	})
	if err != nil {
		return false, err
	}
	if !already {
		promo.UsedCount++
	}
	return already, nil
}

// Seed inserts codes that do not exist yet and leaves existing ones alone.
func (r *GormPromoRepository) Seed(ctx context.Context, promos []models.PromoCode) error {
	for i := range promos {
		if promos[i].ID == uuid.Nil {
			promos[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&promos).Error
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
