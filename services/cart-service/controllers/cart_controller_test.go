package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/controllers"
	cartmw "github.com/Khizarkk7/storefront-backend/services/cart-service/middleware"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/services"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockCartService records the owner each call was made for.
type mockCartService struct {
	owner      string
	guest      string
	checkoutFn func(caller *middleware.Identity, key string, req models.CheckoutRequest) (*models.OrderResponse, bool, *services.ServiceError)
}

func (m *mockCartService) GetCart(_ context.Context, owner, slug string) (*models.Cart, *services.ServiceError) {
	m.owner = owner
	return &models.Cart{ShopSlug: slug, Items: []models.CartItem{}}, nil
}
func (m *mockCartService) AddItem(_ context.Context, owner, slug string, req models.AddItemRequest) (*models.Cart, *services.ServiceError) {
	m.owner = owner
	return &models.Cart{ShopSlug: slug, Items: []models.CartItem{{ProductID: req.ProductID, Quantity: req.Quantity}}, Count: req.Quantity}, nil
}
func (m *mockCartService) SetQuantity(_ context.Context, owner, slug, productID string, qty int) (*models.Cart, *services.ServiceError) {
	m.owner = owner
	if productID == "missing" {
		return nil, &services.ServiceError{StatusCode: 404, Message: "product not in cart"}
	}
	return &models.Cart{ShopSlug: slug, Count: qty}, nil
}
func (m *mockCartService) RemoveItem(_ context.Context, owner, slug, _ string) (*models.Cart, *services.ServiceError) {
	m.owner = owner
	return &models.Cart{ShopSlug: slug}, nil
}
func (m *mockCartService) ItemStatus(_ context.Context, owner, _, _ string) (*models.ItemStatus, *services.ServiceError) {
	m.owner = owner
	return &models.ItemStatus{InCart: true, Quantity: 3}, nil
}
func (m *mockCartService) ClearCart(_ context.Context, owner, _ string) *services.ServiceError {
	m.owner = owner
	return nil
}
func (m *mockCartService) MergeGuest(_ context.Context, guest, owner, slug string) (*models.Cart, int, *services.ServiceError) {
	m.owner, m.guest = owner, guest
	return &models.Cart{ShopSlug: slug}, 2, nil
}
func (m *mockCartService) Checkout(_ context.Context, caller *middleware.Identity, owner, _ string, key string, req models.CheckoutRequest) (*models.OrderResponse, bool, *services.ServiceError) {
	m.owner = owner
	return m.checkoutFn(caller, key, req)
}
func (m *mockCartService) Wishlist(_ context.Context, owner, _ string) ([]models.WishlistItem, *services.ServiceError) {
	m.owner = owner
	return []models.WishlistItem{{ProductID: "p1"}}, nil
}
func (m *mockCartService) ToggleWishlist(_ context.Context, owner, _ string, item models.WishlistItem) (bool, *services.ServiceError) {
	m.owner = owner
	return item.ProductID != "", nil
}
func (m *mockCartService) RemoveFromWishlist(_ context.Context, owner, _, _ string) *services.ServiceError {
	m.owner = owner
	return nil
}
func (m *mockCartService) InWishlist(_ context.Context, owner, _, _ string) (bool, *services.ServiceError) {
	m.owner = owner
	return true, nil
}

func setupRouter(svc services.CartService) *gin.Engine {
	r := gin.New()
	routes.RegisterCartRoutes(r, controllers.NewCartController(svc))
	return r
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGuestWithoutCartIDGetsOne(t *testing.T) {
	svc := &mockCartService{}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart/acme", nil))

	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(cartmw.CartIDHeader)
	_, err := uuid.Parse(issued)
	require.NoError(t, err)
	assert.Equal(t, "guest:"+issued, svc.owner)
	assert.Contains(t, w.Header().Get("Set-Cookie"), cartmw.CartIDCookie+"="+issued)
}

func TestGuestCartIDFromHeaderAndCookie(t *testing.T) {
	svc := &mockCartService{}
	r := setupRouter(svc)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/cart/acme", nil)
	req.Header.Set(cartmw.CartIDHeader, id)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "guest:"+id, svc.owner)

	req = httptest.NewRequest(http.MethodGet, "/wishlist/acme", nil)
	req.AddCookie(&http.Cookie{Name: cartmw.CartIDCookie, Value: id})
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "guest:"+id, svc.owner)
}

func TestAuthenticatedCallerOwnsUserCart(t *testing.T) {
	svc := &mockCartService{}
	r := setupRouter(svc)

	req := jsonRequest(http.MethodPost, "/cart/acme/items", map[string]any{"product_id": "p1", "name": "Mug", "price": 10, "quantity": 2})
	req.Header.Set(middleware.HeaderUserID, "u-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user:u-1", svc.owner)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 2, cart.Count)
}

func TestAddItem_Validation(t *testing.T) {
	r := setupRouter(&mockCartService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/acme/items", map[string]any{"name": "no id"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetQuantity(t *testing.T) {
	r := setupRouter(&mockCartService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/cart/acme/items/p1", map[string]any{"quantity": 0}))
	assert.Equal(t, http.StatusOK, w.Code, "zero is a valid quantity")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/cart/acme/items/p1", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/cart/acme/items/missing", map[string]any{"quantity": 1}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemStatus(t *testing.T) {
	r := setupRouter(&mockCartService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart/acme/items/p1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"in_cart":true,"quantity":3}`, w.Body.String())
}

func TestMerge_RequiresAuth(t *testing.T) {
	svc := &mockCartService{}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/acme/merge", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	guestID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/cart/acme/merge", nil)
	req.Header.Set(middleware.HeaderUserID, "u-1")
	req.Header.Set(cartmw.CartIDHeader, guestID)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user:u-1", svc.owner)
	assert.Equal(t, "guest:"+guestID, svc.guest)
	assert.Contains(t, w.Body.String(), `"merged":2`)
}

func TestCheckout(t *testing.T) {
	body := map[string]any{
		"shop_id":  uuid.NewString(),
		"customer": map[string]any{"full_name": "Ali Raza", "email": "ali@example.com", "phone": "0300"},
		"shipping": map[string]any{"address": "1 Mall Rd", "city": "Lahore", "province": "Punjab", "postal_code": "54000"},
		"payment":  map[string]any{"method": "card"},
	}

	t.Run("guest checkout forwards no identity", func(t *testing.T) {
		svc := &mockCartService{checkoutFn: func(caller *middleware.Identity, key string, req models.CheckoutRequest) (*models.OrderResponse, bool, *services.ServiceError) {
			assert.Nil(t, caller)
			assert.Equal(t, "abc", key)
			assert.Equal(t, "card", req.Payment.Method)
			return &models.OrderResponse{Success: true, OrderID: "o1", RequiresPayment: true}, false, nil
		}}
		req := jsonRequest(http.MethodPost, "/cart/acme/checkout", body)
		req.Header.Set(controllers.IdempotencyHeader, "abc")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
		assert.Contains(t, w.Body.String(), `"requires_payment":true`)
	})

	t.Run("replay is flagged", func(t *testing.T) {
		svc := &mockCartService{checkoutFn: func(caller *middleware.Identity, _ string, _ models.CheckoutRequest) (*models.OrderResponse, bool, *services.ServiceError) {
			require.NotNil(t, caller)
			assert.Equal(t, "u-1", caller.UserID)
			return &models.OrderResponse{Success: true, OrderID: "o1"}, true, nil
		}}
		req := jsonRequest(http.MethodPost, "/cart/acme/checkout", body)
		req.Header.Set(middleware.HeaderUserID, "u-1")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	})

	t.Run("missing customer is rejected", func(t *testing.T) {
		svc := &mockCartService{}
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/acme/checkout", map[string]any{"shop_id": uuid.NewString()}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error status is returned", func(t *testing.T) {
		svc := &mockCartService{checkoutFn: func(*middleware.Identity, string, models.CheckoutRequest) (*models.OrderResponse, bool, *services.ServiceError) {
			return nil, false, &services.ServiceError{StatusCode: 409, Message: "insufficient stock"}
		}}
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/acme/checkout", body))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"insufficient stock"}`, w.Body.String())
	})
}

func TestWishlistRoutes(t *testing.T) {
	r := setupRouter(&mockCartService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/wishlist/acme/toggle", map[string]any{"product": map[string]any{"product_id": "p1"}}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"in_wishlist":true}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wishlist/acme/p1", nil))
	assert.JSONEq(t, `{"in_wishlist":true}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/wishlist/acme/p1", nil))
	assert.JSONEq(t, `{"in_wishlist":false}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wishlist/acme", nil))
	assert.Contains(t, w.Body.String(), `"count":1`)
}
