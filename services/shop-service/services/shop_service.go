package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/repository"
)

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
	PublicURL(key string) string
}

// Cache is satisfied by *cache.JSONCache.
type Cache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

type ShopService interface {
	ListShops(ctx context.Context, filter models.ListFilter, p pagination.Params) ([]models.ShopView, int64, *ServiceError)
	CreateShop(ctx context.Context, caller middleware.Identity, form *models.ShopForm, logo *models.LogoUpload) (*models.ShopView, *ServiceError)
	GetShop(ctx context.Context, caller middleware.Identity, id string) (*models.ShopView, *ServiceError)
	UpdateShop(ctx context.Context, caller middleware.Identity, id string, form *models.ShopForm, logo *models.LogoUpload) (*models.ShopView, *ServiceError)
	DeactivateShop(ctx context.Context, id string) *ServiceError
	GetPublicShop(ctx context.Context, slug string) (*models.PublicShop, *ServiceError)
}

type shopServiceImpl struct {
	repo    repository.ShopRepository
	storage ObjectStorage
	cache   Cache
	logger  *zap.Logger
}

func NewShopService(repo repository.ShopRepository, storage ObjectStorage, cache Cache, logger *zap.Logger) ShopService {
	return &shopServiceImpl{repo: repo, storage: storage, cache: cache, logger: logger}
}

var errShopNotFound = &ServiceError{StatusCode: 404, Message: "shop not found"}

func (s *shopServiceImpl) ListShops(ctx context.Context, filter models.ListFilter, p pagination.Params) ([]models.ShopView, int64, *ServiceError) {
	shops, total, err := s.repo.FindAll(ctx, filter, p)
	if err != nil {
		s.logger.Error("Failed to list shops", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "failed to list shops"}
	}
	views := make([]models.ShopView, len(shops))
	for i := range shops {
		views[i] = s.view(&shops[i])
	}
	return views, total, nil
}

func (s *shopServiceImpl) CreateShop(ctx context.Context, caller middleware.Identity, form *models.ShopForm, logo *models.LogoUpload) (*models.ShopView, *ServiceError) {
	name := strings.TrimSpace(form.ShopName)
	if name == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "shop_name is required"}
	}

	slug, svcErr := s.uniqueSlug(ctx, name, uuid.Nil)
	if svcErr != nil {
		return nil, svcErr
	}

	shop := &models.Shop{
		ID:          uuid.New(),
		ShopName:    name,
		Slug:        slug,
		Description: strings.TrimSpace(form.Description),
		ContactInfo: strings.TrimSpace(form.ContactInfo),
		CreatorName: caller.Name,
		IsActive:    true,
	}
	if creator, err := uuid.Parse(caller.UserID); err == nil {
		shop.CreatedBy = &creator
	}

	if logo != nil {
		key, svcErr := s.uploadLogo(ctx, shop.ID, logo)
		if svcErr != nil {
			return nil, svcErr
		}
		shop.LogoKey = key
	}

	if err := s.repo.Create(ctx, shop); err != nil {
		if shop.LogoKey != "" {
			_ = s.storage.Delete(ctx, shop.LogoKey)
		}
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "a shop with this name already exists"}
		}
		s.logger.Error("Failed to create shop", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create shop"}
	}

	s.logger.Info("Shop created", zap.String("shop_id", shop.ID.String()), zap.String("slug", shop.Slug))
	view := s.view(shop)
	return &view, nil
}

func (s *shopServiceImpl) GetShop(ctx context.Context, caller middleware.Identity, id string) (*models.ShopView, *ServiceError) {
	shop, svcErr := s.load(ctx, caller, id)
	if svcErr != nil {
		return nil, svcErr
	}
	view := s.view(shop)
	return &view, nil
}

// UpdateShop: a name change regenerates the slug, a new logo replaces the
// old object. Empty form fields keep their current value.
func (s *shopServiceImpl) UpdateShop(ctx context.Context, caller middleware.Identity, id string, form *models.ShopForm, logo *models.LogoUpload) (*models.ShopView, *ServiceError) {
	shop, svcErr := s.load(ctx, caller, id)
	if svcErr != nil {
		return nil, svcErr
	}
	oldSlug := shop.Slug

	if name := strings.TrimSpace(form.ShopName); name != "" && name != shop.ShopName {
		slug, svcErr := s.uniqueSlug(ctx, name, shop.ID)
		if svcErr != nil {
			return nil, svcErr
		}
		shop.ShopName = name
		shop.Slug = slug
	}
	if form.Description != "" {
		shop.Description = strings.TrimSpace(form.Description)
	}
	if form.ContactInfo != "" {
		shop.ContactInfo = strings.TrimSpace(form.ContactInfo)
	}

	var oldLogo string
	if logo != nil {
		key, svcErr := s.uploadLogo(ctx, shop.ID, logo)
		if svcErr != nil {
			return nil, svcErr
		}
		if shop.LogoKey != key {
			oldLogo = shop.LogoKey
		}
		shop.LogoKey = key
	}

	if err := s.repo.Save(ctx, shop); err != nil {
		s.logger.Error("Failed to update shop", zap.String("shop_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to update shop"}
	}
	if oldLogo != "" {
		if err := s.storage.Delete(ctx, oldLogo); err != nil {
			s.logger.Warn("Failed to delete replaced logo", zap.String("key", oldLogo), zap.Error(err))
		}
	}
	s.invalidate(ctx, oldSlug, shop.Slug)

	view := s.view(shop)
	return &view, nil
}

func (s *shopServiceImpl) DeactivateShop(ctx context.Context, id string) *ServiceError {
	shopID, err := uuid.Parse(id)
	if err != nil {
		return &ServiceError{StatusCode: 400, Message: "invalid shop id"}
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errShopNotFound
		}
		return &ServiceError{StatusCode: 500, Message: "failed to load shop"}
	}
	if err := s.repo.Deactivate(ctx, shopID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errShopNotFound
		}
		s.logger.Error("Failed to deactivate shop", zap.String("shop_id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to deactivate shop"}
	}
	s.invalidate(ctx, shop.Slug)
	s.logger.Info("Shop deactivated", zap.String("shop_id", id))
	return nil
}

// GetPublicShop is read through the Redis cache.
func (s *shopServiceImpl) GetPublicShop(ctx context.Context, slug string) (*models.PublicShop, *ServiceError) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, errShopNotFound
	}

	var cached models.PublicShop
	if s.cache.Get(ctx, slug, &cached) {
		return &cached, nil
	}

	shop, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errShopNotFound
		}
		s.logger.Error("Failed to load public shop", zap.String("slug", slug), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load shop"}
	}

	public := &models.PublicShop{
		ShopID:      shop.ID,
		ShopName:    shop.ShopName,
		Slug:        shop.Slug,
		Description: shop.Description,
		ContactInfo: shop.ContactInfo,
		Logo:        shop.LogoKey,
		FullLogoURL: s.storage.PublicURL(shop.LogoKey),
	}
	if err := s.cache.Set(ctx, slug, public); err != nil {
		s.logger.Warn("Failed to cache public shop", zap.String("slug", slug), zap.Error(err))
	}
	return public, nil
}

func (s *shopServiceImpl) load(ctx context.Context, caller middleware.Identity, id string) (*models.Shop, *ServiceError) {
	shopID, err := uuid.Parse(id)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid shop id"}
	}
	if !caller.CanAccessShop(shopID.String()) {
		return nil, &ServiceError{StatusCode: 403, Message: "no access to this shop"}
	}
	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errShopNotFound
		}
		s.logger.Error("Failed to load shop", zap.String("shop_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load shop"}
	}
	return shop, nil
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func (s *shopServiceImpl) uniqueSlug(ctx context.Context, name string, self uuid.UUID) (string, *ServiceError) {
	base := Slugify(name)
	if base == "" {
		base = "shop"
	}
	candidate := base
	for i := 2; i < 1000; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate, self)
		if err != nil {
			s.logger.Error("Failed to check slug", zap.Error(err))
			return "", &ServiceError{StatusCode: 500, Message: "failed to generate slug"}
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", &ServiceError{StatusCode: 409, Message: "could not find a free slug for this name"}
}

func (s *shopServiceImpl) uploadLogo(ctx context.Context, shopID uuid.UUID, logo *models.LogoUpload) (string, *ServiceError) {
	data, contentType, ext, svcErr := sniffLogo(logo)
	if svcErr != nil {
		return "", svcErr
	}
	key := logoKey(shopID.String(), ext)
	if err := s.storage.Upload(ctx, key, contentType, readerOf(data)); err != nil {
		s.logger.Error("Failed to upload logo", zap.String("key", key), zap.Error(err))
		return "", &ServiceError{StatusCode: 502, Message: "failed to upload logo"}
	}
	return key, nil
}

func (s *shopServiceImpl) invalidate(ctx context.Context, slugs ...string) {
	if err := s.cache.Delete(ctx, slugs...); err != nil {
		s.logger.Warn("Failed to invalidate shop cache", zap.Strings("slugs", slugs), zap.Error(err))
	}
}

func (s *shopServiceImpl) view(shop *models.Shop) models.ShopView {
	return models.ShopView{Shop: *shop, FullLogoURL: s.storage.PublicURL(shop.LogoKey)}
}
