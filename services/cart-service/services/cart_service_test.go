package services_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/services"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

type fakeOrders struct {
	mu    sync.Mutex
	calls []models.OrderRequest
	err   error
}

func (f *fakeOrders) PlaceOrder(_ context.Context, _ *middleware.Identity, req models.OrderRequest) (*models.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.OrderResponse{Success: true, OrderID: "order-1", OrderNumber: "ORD-20260101-ABC123", OrderStatus: "pending_cod"}, nil
}

type countingMetrics struct {
	mu    sync.Mutex
	names []string
}

func (m *countingMetrics) RecordAsync(name string, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
}

func newService(t *testing.T, orders services.OrderPlacer) (services.CartService, *countingMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	metrics := &countingMetrics{}
	return services.NewCartService(repository.NewCartRepository(rdb, time.Hour), orders, metrics, time.Hour, zap.NewNop()), metrics
}

func checkoutRequest() models.CheckoutRequest {
	return models.CheckoutRequest{
		ShopID:   "5b0c3c0e-8f3a-4b61-9a43-0d2f7d2b2f11",
		Customer: models.Customer{FullName: "Ali Raza", Email: "ali@example.com", Phone: "03001234567"},
		Shipping: models.Shipping{Address: "1 Mall Rd", City: "Lahore", Province: "Punjab", PostalCode: "54000"},
		Payment:  models.PaymentInput{Method: "cod"},
	}
}

func TestBuildCart_CountAndTotal(t *testing.T) {
	cart := services.BuildCart("acme", []models.CartItem{
		{ProductID: "a", Price: 0.1, Quantity: 3},
		{ProductID: "b", Price: 19.99, Quantity: 2},
	})
	assert.Equal(t, 5, cart.Count)
	assert.Equal(t, 40.28, cart.Total)

	empty := services.BuildCart("acme", nil)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Total)
}

func TestAddItem_DefaultsQuantityAndNormalizesSlug(t *testing.T) {
	svc, _ := newService(t, &fakeOrders{})
	ctx := context.Background()

	cart, svcErr := svc.AddItem(ctx, "guest:a", " ACME ", models.AddItemRequest{ProductID: "p1", Name: "Mug", Price: 250})
	require.Nil(t, svcErr)
	assert.Equal(t, "acme", cart.ShopSlug)
	assert.Equal(t, 1, cart.Count)
	assert.Equal(t, 250.0, cart.Total)

	_, svcErr = svc.AddItem(ctx, "guest:a", "bad:slug", models.AddItemRequest{ProductID: "p1"})
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestSetQuantity_MissingLineIs404(t *testing.T) {
	svc, _ := newService(t, &fakeOrders{})
	_, svcErr := svc.SetQuantity(context.Background(), "guest:a", "acme", "nope", 2)
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestItemStatus(t *testing.T) {
	svc, _ := newService(t, &fakeOrders{})
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "guest:a", "acme", models.AddItemRequest{ProductID: "p1", Quantity: 4})

	status, svcErr := svc.ItemStatus(ctx, "guest:a", "acme", "p1")
	require.Nil(t, svcErr)
	assert.Equal(t, models.ItemStatus{InCart: true, Quantity: 4}, *status)

	status, svcErr = svc.ItemStatus(ctx, "guest:a", "acme", "p2")
	require.Nil(t, svcErr)
	assert.False(t, status.InCart)
}

func TestMergeGuest(t *testing.T) {
	svc, _ := newService(t, &fakeOrders{})
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "guest:g", "acme", models.AddItemRequest{ProductID: "p1", Quantity: 2, Price: 5})

	cart, moved, svcErr := svc.MergeGuest(ctx, "guest:g", "user:u", "acme")
	require.Nil(t, svcErr)
	assert.Equal(t, 1, moved)
	assert.Equal(t, 2, cart.Count)

	guestCart, _ := svc.GetCart(ctx, "guest:g", "acme")
	assert.Empty(t, guestCart.Items)
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	orders := &fakeOrders{}
	svc, metrics := newService(t, orders)
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "guest:a", "acme", models.AddItemRequest{ProductID: "p1", Name: "Mug", Price: 250, Quantity: 2})

	resp, replayed, svcErr := svc.Checkout(ctx, nil, "guest:a", "acme", "", checkoutRequest())
	require.Nil(t, svcErr)
	assert.False(t, replayed)
	assert.Equal(t, "order-1", resp.OrderID)

	require.Len(t, orders.calls, 1)
	assert.Equal(t, []models.OrderLine{{ProductID: "p1", Name: "Mug", Price: 250, Quantity: 2}}, orders.calls[0].Items)

	cart, _ := svc.GetCart(ctx, "guest:a", "acme")
	assert.Empty(t, cart.Items)
	assert.Equal(t, []string{"CartCheckouts"}, metrics.names)
}

func TestCheckout_EmptyCart(t *testing.T) {
	orders := &fakeOrders{}
	svc, _ := newService(t, orders)
	_, _, svcErr := svc.Checkout(context.Background(), nil, "guest:a", "acme", "", checkoutRequest())
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Empty(t, orders.calls)
}

func TestCheckout_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"client error passes through", &client.StatusError{StatusCode: 409, Message: "insufficient stock"}, 409},
		{"server error is bad gateway", &client.StatusError{StatusCode: 500, Message: "boom"}, 502},
		{"transport error is bad gateway", errors.New("dial tcp: refused"), 502},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(t, &fakeOrders{err: tc.err})
			ctx := context.Background()
			_, _ = svc.AddItem(ctx, "guest:a", "acme", models.AddItemRequest{ProductID: "p1", Quantity: 1})

			_, _, svcErr := svc.Checkout(ctx, nil, "guest:a", "acme", "key-1", checkoutRequest())
			require.NotNil(t, svcErr)
			assert.Equal(t, tc.want, svcErr.StatusCode)

			cart, _ := svc.GetCart(ctx, "guest:a", "acme")
			assert.Len(t, cart.Items, 1, "cart survives a failed checkout")
		})
	}
}

func TestCheckout_IdempotencyKeyReplays(t *testing.T) {
	orders := &fakeOrders{}
	svc, _ := newService(t, orders)
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "guest:a", "acme", models.AddItemRequest{ProductID: "p1", Quantity: 1})

	first, replayed, svcErr := svc.Checkout(ctx, nil, "guest:a", "acme", "key-1", checkoutRequest())
	require.Nil(t, svcErr)
	assert.False(t, replayed)

	second, replayed, svcErr := svc.Checkout(ctx, nil, "guest:a", "acme", "key-1", checkoutRequest())
	require.Nil(t, svcErr)
	assert.True(t, replayed)
	assert.Equal(t, first, second)
	assert.Len(t, orders.calls, 1)
}

func TestCheckout_FailedAttemptReleasesKey(t *testing.T) {
	orders := &fakeOrders{err: errors.New("timeout")}
	svc, _ := newService(t, orders)
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "guest:a", "acme", models.AddItemRequest{ProductID: "p1", Quantity: 1})

	_, _, svcErr := svc.Checkout(ctx, nil, "guest:a", "acme", "key-1", checkoutRequest())
	require.NotNil(t, svcErr)

	orders.err = nil
	resp, replayed, svcErr := svc.Checkout(ctx, nil, "guest:a", "acme", "key-1", checkoutRequest())
	require.Nil(t, svcErr)
	assert.False(t, replayed)
	assert.Equal(t, "order-1", resp.OrderID)
}

func TestWishlistRoundTrip(t *testing.T) {
	svc, _ := newService(t, &fakeOrders{})
	ctx := context.Background()

	in, svcErr := svc.ToggleWishlist(ctx, "guest:a", "acme", models.WishlistItem{ProductID: "p1", Name: "Mug"})
	require.Nil(t, svcErr)
	assert.True(t, in)

	items, _ := svc.Wishlist(ctx, "guest:a", "acme")
	require.Len(t, items, 1)
	assert.False(t, items[0].AddedAt.IsZero())

	require.Nil(t, svc.RemoveFromWishlist(ctx, "guest:a", "acme", "p1"))
	in, _ = svc.InWishlist(ctx, "guest:a", "acme", "p1")
	assert.False(t, in)
}

func TestStoreFailureIs500(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       "unreachable:6379",
		MaxRetries: -1,
		Dialer: func(context.Context, string, string) (net.Conn, error) {
			return nil, errors.New("redis down")
		},
	})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := services.NewCartService(repository.NewCartRepository(rdb, time.Hour), &fakeOrders{}, &countingMetrics{}, time.Hour, zap.NewNop())

	_, svcErr := svc.GetCart(context.Background(), "guest:a", "acme")
	require.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)
}
