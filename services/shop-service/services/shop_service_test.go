package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/repository"
)

type memShopRepo struct {
	shops       map[uuid.UUID]*models.Shop
	deactivated []uuid.UUID
	slugLookups int
}

func newMemShopRepo() *memShopRepo {
	return &memShopRepo{shops: map[uuid.UUID]*models.Shop{}}
}

func (r *memShopRepo) FindAll(_ context.Context, _ models.ListFilter, _ pagination.Params) ([]models.Shop, int64, error) {
	var out []models.Shop
	for _, s := range r.shops {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *memShopRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Shop, error) {
	if s, ok := r.shops[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memShopRepo) FindActiveBySlug(_ context.Context, slug string) (*models.Shop, error) {
	for _, s := range r.shops {
		if s.Slug == slug && s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memShopRepo) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.slugLookups++
	for id, s := range r.shops {
		if s.Slug == slug && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *memShopRepo) Create(_ context.Context, shop *models.Shop) error {
	cp := *shop
	r.shops[shop.ID] = &cp
	return nil
}

func (r *memShopRepo) Save(_ context.Context, shop *models.Shop) error {
	cp := *shop
	r.shops[shop.ID] = &cp
	return nil
}

func (r *memShopRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	s, ok := r.shops[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = false
	r.deactivated = append(r.deactivated, id)
	return nil
}

type memStorage struct {
	objects map[string][]byte
	deleted []string
}

func (m *memStorage) Upload(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStorage) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.example.com/" + key
}

type memCache struct {
	values map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string, out any) bool {
	raw, ok := m.values[key]
	return ok && json.Unmarshal(raw, out) == nil
}

func (m *memCache) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestShopService() (*shopServiceImpl, *memShopRepo, *memStorage, *memCache) {
	repo := newMemShopRepo()
	storage := &memStorage{objects: map[string][]byte{}}
	c := &memCache{values: map[string][]byte{}}
	svc := NewShopService(repo, storage, c, zap.NewNop()).(*shopServiceImpl)
	return svc, repo, storage, c
}

var sysAdmin = middleware.Identity{UserID: uuid.NewString(), Role: "system_admin", Name: "Root"}

func TestCreateShop_UniqueSlugAndLogo(t *testing.T) {
	svc, repo, storage, _ := newTestShopService()
	ctx := context.Background()

	first, svcErr := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Corner Bakery"}, nil)
	require.Nil(t, svcErr)
	assert.Equal(t, "corner-bakery", first.Slug)
	assert.Equal(t, "Root", first.CreatorName)
	assert.True(t, first.IsActive)

	logo := &models.LogoUpload{Filename: "logo.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)}
	second, svcErr := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Corner  Bakery!"}, logo)
	require.Nil(t, svcErr)
	assert.Equal(t, "corner-bakery-2", second.Slug)

	wantKey := "shops/" + second.ID.String() + "/logo.png"
	assert.Equal(t, wantKey, second.LogoKey)
	assert.Equal(t, "https://cdn.example.com/"+wantKey, second.FullLogoURL)
	assert.Contains(t, storage.objects, wantKey)
	assert.Len(t, repo.shops, 2)
}

func TestCreateShop_Validation(t *testing.T) {
	svc, _, _, _ := newTestShopService()
	ctx := context.Background()

	_, svcErr := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "   "}, nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)

	gif := []byte("GIF89a\x01\x00\x01\x00")
	_, svcErr = svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Gifs"},
		&models.LogoUpload{Filename: "a.gif", Size: int64(len(gif)), Body: bytes.NewReader(gif)})
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)

	_, svcErr = svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Huge"},
		&models.LogoUpload{Filename: "a.png", Size: MaxLogoBytes + 1, Body: bytes.NewReader(pngHeader)})
	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.Message, "2MB")
}

func TestGetShop_ShopAdminScope(t *testing.T) {
	svc, _, _, _ := newTestShopService()
	ctx := context.Background()

	shop, svcErr := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Own"}, nil)
	require.Nil(t, svcErr)

	owner := middleware.Identity{UserID: uuid.NewString(), Role: "shop_admin", ShopID: shop.ID.String()}
	got, svcErr := svc.GetShop(ctx, owner, shop.ID.String())
	require.Nil(t, svcErr)
	assert.Equal(t, "own", got.Slug)

	stranger := middleware.Identity{UserID: uuid.NewString(), Role: "shop_admin", ShopID: uuid.NewString()}
	_, svcErr = svc.GetShop(ctx, stranger, shop.ID.String())
	require.NotNil(t, svcErr)
	assert.Equal(t, 403, svcErr.StatusCode)

	_, svcErr = svc.GetShop(ctx, sysAdmin, "not-a-uuid")
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestUpdateShop_RenameReplacesLogoAndInvalidates(t *testing.T) {
	svc, _, storage, c := newTestShopService()
	ctx := context.Background()

	jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	shop, svcErr := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Old Name"},
		&models.LogoUpload{Filename: "a.jpg", Size: int64(len(jpeg)), Body: bytes.NewReader(jpeg)})
	require.Nil(t, svcErr)
	oldKey := shop.LogoKey

	_, svcErr = svc.GetPublicShop(ctx, "old-name")
	require.Nil(t, svcErr)
	require.Contains(t, c.values, "old-name")

	updated, svcErr := svc.UpdateShop(ctx, sysAdmin, shop.ID.String(),
		&models.ShopForm{ShopName: "New Name", Description: "fresh bread"},
		&models.LogoUpload{Filename: "b.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	require.Nil(t, svcErr)

	assert.Equal(t, "new-name", updated.Slug)
	assert.Equal(t, "fresh bread", updated.Description)
	assert.NotEqual(t, oldKey, updated.LogoKey)
	assert.Contains(t, storage.deleted, oldKey)
	assert.NotContains(t, c.values, "old-name")

	_, svcErr = svc.GetPublicShop(ctx, "old-name")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestUpdateShop_SameNameKeepsSlug(t *testing.T) {
	svc, repo, _, _ := newTestShopService()
	ctx := context.Background()

	shop, _ := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Stable"}, nil)
	lookups := repo.slugLookups

	updated, svcErr := svc.UpdateShop(ctx, sysAdmin, shop.ID.String(), &models.ShopForm{ShopName: "Stable", ContactInfo: "0300"}, nil)
	require.Nil(t, svcErr)
	assert.Equal(t, "stable", updated.Slug)
	assert.Equal(t, "0300", updated.ContactInfo)
	assert.Equal(t, lookups, repo.slugLookups)
}

func TestDeactivateShop_HidesPublicPage(t *testing.T) {
	svc, repo, _, c := newTestShopService()
	ctx := context.Background()

	shop, _ := svc.CreateShop(ctx, sysAdmin, &models.ShopForm{ShopName: "Closing Down"}, nil)
	pub, svcErr := svc.GetPublicShop(ctx, "Closing-Down")
	require.Nil(t, svcErr)
	assert.Equal(t, shop.ID, pub.ShopID)

	require.Nil(t, svc.DeactivateShop(ctx, shop.ID.String()))
	assert.Equal(t, []uuid.UUID{shop.ID}, repo.deactivated)
	assert.Empty(t, c.values)

	_, svcErr = svc.GetPublicShop(ctx, "closing-down")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)

	svcErr = svc.DeactivateShop(ctx, uuid.NewString())
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestGetPublicShop_ServedFromCache(t *testing.T) {
	svc, repo, _, c := newTestShopService()
	ctx := context.Background()

	cached := models.PublicShop{ShopID: uuid.New(), ShopName: "Cached", Slug: "cached"}
	require.NoError(t, c.Set(ctx, "cached", cached))

	got, svcErr := svc.GetPublicShop(ctx, "cached")
	require.Nil(t, svcErr)
	assert.Equal(t, "Cached", got.ShopName)
	assert.Empty(t, repo.shops)
}
