package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
)

func newTestRepo(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartRepository(client, 7*24*time.Hour), mr
}

func TestAddItem_MergesAndCaps(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddItem(ctx, "guest:a", "acme", models.CartItem{ProductID: "p1", Name: "Mug", Price: 10, Quantity: 60})
	require.NoError(t, err)
	assert.Equal(t, 60, first.Quantity)

	merged, err := repo.AddItem(ctx, "guest:a", "acme", models.CartItem{ProductID: "p1", Name: "Big Mug", Price: 12, Quantity: 60})
	require.NoError(t, err)
	assert.Equal(t, models.MaxLineQuantity, merged.Quantity)
	assert.Equal(t, "Big Mug", merged.Name)
	assert.Equal(t, 12.0, merged.Price)
	assert.Equal(t, first.AddedAt, merged.AddedAt)

	items, err := repo.Items(ctx, "guest:a", "acme")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAddItem_SetsTTLAndKeyLayout(t *testing.T) {
	repo, mr := newTestRepo(t)
	_, err := repo.AddItem(context.Background(), "user:1", "acme", models.CartItem{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	assert.True(t, mr.Exists("cart:user:1:acme"))
	assert.Equal(t, 7*24*time.Hour, mr.TTL("cart:user:1:acme"))
}

func TestCartsAreScopedByShop(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	_, _ = repo.AddItem(ctx, "guest:a", "acme", models.CartItem{ProductID: "p1", Quantity: 1})

	other, err := repo.Items(ctx, "guest:a", "globex")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSetQuantity(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	_, _ = repo.AddItem(ctx, "guest:a", "acme", models.CartItem{ProductID: "p1", Quantity: 2})

	item, found, err := repo.SetQuantity(ctx, "guest:a", "acme", "p1", 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 5, item.Quantity)

	_, found, err = repo.SetQuantity(ctx, "guest:a", "acme", "missing", 5)
	require.NoError(t, err)
	assert.False(t, found)

	item, found, err = repo.SetQuantity(ctx, "guest:a", "acme", "p1", 0)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, item)
	got, err := repo.Item(ctx, "guest:a", "acme", "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMerge_MovesGuestLinesAndDeletesSource(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	_, _ = repo.AddItem(ctx, "guest:g", "acme", models.CartItem{ProductID: "p1", Quantity: 3})
	_, _ = repo.AddItem(ctx, "guest:g", "acme", models.CartItem{ProductID: "p2", Quantity: 1})
	_, _ = repo.AddItem(ctx, "user:u", "acme", models.CartItem{ProductID: "p1", Quantity: 98})

	moved, err := repo.Merge(ctx, "guest:g", "user:u", "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.False(t, mr.Exists("cart:guest:g:acme"))

	p1, _ := repo.Item(ctx, "user:u", "acme", "p1")
	p2, _ := repo.Item(ctx, "user:u", "acme", "p2")
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.Equal(t, models.MaxLineQuantity, p1.Quantity)
	assert.Equal(t, 1, p2.Quantity)
}

func TestToggleWishlist(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	item := models.WishlistItem{ProductID: "p1", Name: "Mug"}

	in, err := repo.ToggleWishlist(ctx, "guest:a", "acme", item)
	require.NoError(t, err)
	assert.True(t, in)
	exists, _ := repo.InWishlist(ctx, "guest:a", "acme", "p1")
	assert.True(t, exists)

	in, err = repo.ToggleWishlist(ctx, "guest:a", "acme", item)
	require.NoError(t, err)
	assert.False(t, in)
	items, _ := repo.WishlistItems(ctx, "guest:a", "acme")
	assert.Empty(t, items)
}

func TestIdempotency_ClaimReplayRelease(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, claimed, err := repo.ClaimIdempotency(ctx, "guest:a", "k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	stored, claimed, err := repo.ClaimIdempotency(ctx, "guest:a", "k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Nil(t, stored, "pending claim has no response yet")

	require.NoError(t, repo.StoreIdempotency(ctx, "guest:a", "k1", []byte(`{"order_id":"o1"}`), time.Hour))
	stored, claimed, err = repo.ClaimIdempotency(ctx, "guest:a", "k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.JSONEq(t, `{"order_id":"o1"}`, string(stored))

	require.NoError(t, repo.ReleaseIdempotency(ctx, "guest:a", "k1"))
	_, claimed, err = repo.ClaimIdempotency(ctx, "guest:a", "k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}
