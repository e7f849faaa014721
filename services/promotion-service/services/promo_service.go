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
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/models"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/repository"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Metrics is satisfied by *awspkg.MetricsClient.
type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

type PromoService interface {
	Validate(ctx context.Context, req *models.ValidateRequest) (*models.ValidateResponse, *ServiceError)
	Redeem(ctx context.Context, req *models.RedeemRequest) (*models.RedeemResponse, *ServiceError)
	CreatePromo(ctx context.Context, caller middleware.Identity, req *models.CreatePromoRequest) (*models.PromoCode, *ServiceError)
	GetPromo(ctx context.Context, caller middleware.Identity, code string) (*models.PromoCode, *ServiceError)
	ListPromos(ctx context.Context, caller middleware.Identity, p pagination.Params) ([]models.PromoCode, int64, *ServiceError)
	DeactivatePromo(ctx context.Context, caller middleware.Identity, code string) *ServiceError
	SeedDefaults(ctx context.Context) error
}

type promoServiceImpl struct {
	repo    repository.PromoRepository
	metrics Metrics
	now     func() time.Time
	logger  *zap.Logger
}

func NewPromoService(repo repository.PromoRepository, metrics Metrics, logger *zap.Logger) PromoService {
	return &promoServiceImpl{repo: repo, metrics: metrics, now: time.Now, logger: logger}
}

var (
	errPromoNotFound = &ServiceError{StatusCode: 404, Message: "promo code not found"}
	errNoAccess      = &ServiceError{StatusCode: 403, Message: "no access to this promo code"}
	hundred          = decimal.NewFromInt(100)
)

// Evaluate checks promo against an order and returns the discount, or the
// reason it does not apply.
func Evaluate(promo *models.PromoCode, shopID string, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, string) {
	switch {
	case !promo.IsActive:
		return decimal.Zero, "Promo code is inactive"
	case promo.ExpiresAt != nil && now.After(*promo.ExpiresAt):
		return decimal.Zero, "Promo code has expired"
	case promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit:
		return decimal.Zero, "Promo code usage limit reached"
	case promo.ShopID != nil && !strings.EqualFold(promo.ShopID.String(), shopID):
		return decimal.Zero, "Promo code is not valid for this shop"
	case subtotal.LessThan(promo.MinOrderValue):
		return decimal.Zero, fmt.Sprintf("Minimum order value of %s required", promo.MinOrderValue.StringFixed(2))
	}

	var discount decimal.Decimal
	switch promo.Type {
	case models.PromoPercentage:
		discount = subtotal.Mul(promo.Value).Div(hundred)
		if promo.MaxDiscount.IsPositive() && discount.GreaterThan(promo.MaxDiscount) {
			discount = promo.MaxDiscount
		}
	case models.PromoFlat:
		discount = decimal.Min(promo.Value, subtotal)
	case models.PromoFreeShipping:
		discount = decimal.Zero
	default:
		return decimal.Zero, "Promo code type is not supported"
	}
	return discount.Round(2), ""
}

func (s *promoServiceImpl) Validate(ctx context.Context, req *models.ValidateRequest) (*models.ValidateResponse, *ServiceError) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	invalid := func(msg string) *models.ValidateResponse {
		return &models.ValidateResponse{Valid: false, Code: code, Message: msg}
	}
	if code == "" {
		return invalid("Promo code not found"), nil
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("Promo code not found"), nil
		}
		s.logger.Error("Failed to load promo code", zap.String("code", code), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to validate promo code"}
	}

	discount, reason := Evaluate(promo, req.ShopID, decimal.NewFromFloat(req.Subtotal), s.now())
	if reason != "" {
		return invalid(reason), nil
	}
	return &models.ValidateResponse{
		Valid:        true,
		Code:         promo.Code,
		Type:         promo.Type,
		Discount:     discount.InexactFloat64(),
		FreeShipping: promo.Type == models.PromoFreeShipping,
		Message:      "Promo code applied",
	}, nil
}

// Redeem is called by order-service after the order exists.
func (s *promoServiceImpl) Redeem(ctx context.Context, req *models.RedeemRequest) (*models.RedeemResponse, *ServiceError) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid order id"}
	}
	promo, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPromoNotFound
		}
		s.logger.Error("Failed to load promo code", zap.String("code", req.Code), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to redeem promo code"}
	}
	if !promo.IsActive {
		return nil, &ServiceError{StatusCode: 409, Message: "promo code is inactive"}
	}

	already, err := s.repo.Redeem(ctx, promo, orderID, decimal.NewFromFloat(req.Discount).Round(2))
	if err != nil {
		if errors.Is(err, repository.ErrExhausted) {
			return nil, &ServiceError{StatusCode: 409, Message: "promo code usage limit reached"}
		}
		s.logger.Error("Failed to redeem promo code", zap.String("code", promo.Code), zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to redeem promo code"}
	}
	if !already {
		s.metrics.RecordAsync(awspkg.MetricPromoRedeemed, map[string]string{"Code": promo.Code})
		s.logger.Info("Promo code redeemed", zap.String("code", promo.Code), zap.String("order_id", req.OrderID))
	}
	return &models.RedeemResponse{
		Redeemed:        true,
		AlreadyRedeemed: already,
		Code:            promo.Code,
		UsedCount:       promo.UsedCount,
	}, nil
}

// CreatePromo: shop admins may only create codes for their own shop.
func (s *promoServiceImpl) CreatePromo(ctx context.Context, caller middleware.Identity, req *models.CreatePromoRequest) (*models.PromoCode, *ServiceError) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) < 3 {
		return nil, &ServiceError{StatusCode: 400, Message: "code must be at least 3 characters"}
	}
	if req.Type == models.PromoPercentage && req.Value > 100 {
		return nil, &ServiceError{StatusCode: 400, Message: "percentage discount cannot exceed 100"}
	}
	if req.Type != models.PromoFreeShipping && req.Value <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "value must be greater than 0"}
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(s.now()) {
		return nil, &ServiceError{StatusCode: 400, Message: "expiry date must be in the future"}
	}

	shopID := req.ShopID
	if !caller.IsSystemAdmin() {
		if shopID != "" && shopID != caller.ShopID {
			return nil, errNoAccess
		}
		shopID = caller.ShopID
		if shopID == "" {
			return nil, errNoAccess
		}
	}

	promo := &models.PromoCode{
		Code:          code,
		Type:          req.Type,
		Value:         decimal.NewFromFloat(req.Value).Round(2),
		MinOrderValue: decimal.NewFromFloat(req.MinOrderValue).Round(2),
		MaxDiscount:   decimal.NewFromFloat(req.MaxDiscount).Round(2),
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      true,
	}
	if shopID != "" {
		id, err := uuid.Parse(shopID)
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: "invalid shop id"}
		}
		promo.ShopID = &id
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "promo code already exists"}
		}
		s.logger.Error("Failed to create promo code", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create promo code"}
	}
	s.logger.Info("Promo code created", zap.String("code", promo.Code), zap.String("type", string(promo.Type)))
	return promo, nil
}

func (s *promoServiceImpl) GetPromo(ctx context.Context, caller middleware.Identity, code string) (*models.PromoCode, *ServiceError) {
	promo, svcErr := s.load(ctx, code)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.IsSystemAdmin() && promo.ShopID != nil && promo.ShopID.String() != caller.ShopID {
		return nil, errNoAccess
	}
	return promo, nil
}

func (s *promoServiceImpl) ListPromos(ctx context.Context, caller middleware.Identity, p pagination.Params) ([]models.PromoCode, int64, *ServiceError) {
	var shopID *uuid.UUID
	if !caller.IsSystemAdmin() {
		id, err := uuid.Parse(caller.ShopID)
		if err != nil {
			return nil, 0, errNoAccess
		}
		shopID = &id
	}
	promos, total, err := s.repo.FindAll(ctx, shopID, p)
	if err != nil {
		s.logger.Error("Failed to list promo codes", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "failed to list promo codes"}
	}
	return promos, total, nil
}

// DeactivatePromo: codes for all shops belong to system admins.
func (s *promoServiceImpl) DeactivatePromo(ctx context.Context, caller middleware.Identity, code string) *ServiceError {
	promo, svcErr := s.load(ctx, code)
	if svcErr != nil {
		return svcErr
	}
	if !caller.IsSystemAdmin() && (promo.ShopID == nil || promo.ShopID.String() != caller.ShopID) {
		return errNoAccess
	}
	if err := s.repo.Deactivate(ctx, promo.Code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errPromoNotFound
		}
		s.logger.Error("Failed to deactivate promo code", zap.String("code", promo.Code), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to deactivate promo code"}
	}
	s.logger.Info("Promo code deactivated", zap.String("code", promo.Code))
	return nil
}

func (s *promoServiceImpl) SeedDefaults(ctx context.Context) error {
	promos := DefaultPromos()
	if err := s.repo.Seed(ctx, promos); err != nil {
		return err
	}
	s.logger.Info("Promo codes seeded", zap.Int("count", len(promos)))
	return nil
}

// DefaultPromos are the launch codes: 10% off, every shop, no limit.
func DefaultPromos() []models.PromoCode {
	codes := []string{"WELCOME10", "SAVE20", "FIRSTORDER"}
	promos := make([]models.PromoCode, len(codes))
	for i, code := range codes {
		promos[i] = models.PromoCode{
			Code:     code,
			Type:     models.PromoPercentage,
			Value:    decimal.NewFromInt(10),
			IsActive: true,
		}
	}
	return promos
}

func (s *promoServiceImpl) load(ctx context.Context, code string) (*models.PromoCode, *ServiceError) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPromoNotFound
		}
		s.logger.Error("Failed to load promo code", zap.String("code", code), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load promo code"}
	}
	return promo, nil
}
