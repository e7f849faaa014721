package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/bff-service/models"
	"github.com/Khizarkk7/storefront-backend/services/bff-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/bff-service/services"
	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockBFFService struct {
	caller middleware.Identity
	shopID string
}

func (m *mockBFFService) Storefront(_ context.Context, slug string, _ url.Values) (*models.Storefront, *services.ServiceError) {
	if slug != "lawn-house" {
		return nil, &services.ServiceError{StatusCode: 404, Message: "shop not found"}
	}
	return &models.Storefront{Shop: models.PublicShop{ShopName: "Lawn House", Slug: slug}}, nil
}

func (m *mockBFFService) Dashboard(_ context.Context, caller middleware.Identity, shopID string) (*models.Dashboard, *services.ServiceError) {
	m.caller = caller
	m.shopID = shopID
	return &models.Dashboard{Users: &models.Count{Total: 3}, Errors: map[string]string{"orders": "unavailable"}}, nil
}

func serve(svc services.BFFService, path, role string) *httptest.ResponseRecorder {
	r := gin.New()
	routes.RegisterRoutes(r, controllers.NewBFFController(svc))
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		req.Header.Set(middleware.HeaderUserID, "u1")
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStorefront(t *testing.T) {
	w := serve(&mockBFFService{}, "/storefront/lawn-house", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"shop_name":"Lawn House"`)

	w = serve(&mockBFFService{}, "/storefront/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	svc := &mockBFFService{}
	w := serve(svc, "/dashboard?shop_id=s1", auth.RoleSystemAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.shopID)
	assert.Equal(t, "u1", svc.caller.UserID)
	assert.Contains(t, w.Body.String(), `"errors":{"orders":"unavailable"}`)
}

func TestDashboard_Access(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serve(&mockBFFService{}, "/dashboard", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(&mockBFFService{}, "/dashboard", auth.RoleCustomer).Code)
}
