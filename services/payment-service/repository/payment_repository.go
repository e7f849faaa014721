package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
)

var ErrNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindOpen(ctx context.Context, orderID uuid.UUID, provider string) (*models.Payment, error)
	FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindByProviderRef(ctx context.Context, provider, ref string) (*models.Payment, error)
	SetSession(ctx context.Context, id uuid.UUID, ref, paymentURL string) error
	Resolve(ctx context.Context, id uuid.UUID, status, reason string) (bool, error)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindOpen returns the newest pending payment that already has a URL the
// customer can be sent to.
func (r *gormPaymentRepo) FindOpen(ctx context.Context, orderID uuid.UUID, provider string) (*models.Payment, error) {
	return r.first(r.db.WithContext(ctx).
		Where("order_id = ? AND provider = ? AND status = ? AND payment_url <> ''", orderID, provider, models.StatusPending).
		Order("created_at DESC"))
}

func (r *gormPaymentRepo) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC"))
}

func (r *gormPaymentRepo) FindByProviderRef(ctx context.Context, provider, ref string) (*models.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("provider = ? AND provider_ref = ?", provider, ref))
}

func (r *gormPaymentRepo) SetSession(ctx context.Context, id uuid.UUID, ref, paymentURL string) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"provider_ref": ref, "payment_url": paymentURL}).Error
}

// Resolve moves a pending payment to a terminal status. It reports false
// when the payment was already terminal.
func (r *gormPaymentRepo) Resolve(ctx context.Context, id uuid.UUID, status, reason string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{"status": status, "failure_reason": reason})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormPaymentRepo) first(q *gorm.DB) (*models.Payment, error) {
	var payment models.Payment
	if err := q.First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}
