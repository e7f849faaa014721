package controllers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/models"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockInventoryService struct {
	created   bool
	reduceErr *services.ServiceError
	reserveFn func(req *models.ItemsRequest) ([]models.StockCheckResult, *services.ServiceError)
	gotLimit  int
}

func (m *mockInventoryService) ListByShop(context.Context, string, pagination.Params) (*models.StockPage, *services.ServiceError) {
	return &models.StockPage{Data: []models.StockView{}}, nil
}
func (m *mockInventoryService) GetStock(_ context.Context, id string) (*models.StockView, *services.ServiceError) {
	return &models.StockView{Stock: models.Stock{ProductID: id}, Status: "active"}, nil
}
func (m *mockInventoryService) CreateStock(_ context.Context, _ middleware.Identity, req *models.CreateStockRequest) (*models.StockView, bool, *services.ServiceError) {
	return &models.StockView{Stock: models.Stock{ProductID: req.ProductID}}, m.created, nil
}
func (m *mockInventoryService) AddQuantity(_ context.Context, _ middleware.Identity, id string, _ int) (*models.StockView, *services.ServiceError) {
	return &models.StockView{Stock: models.Stock{ProductID: id}}, nil
}
func (m *mockInventoryService) ReduceQuantity(context.Context, middleware.Identity, string, int) (*models.StockView, *services.ServiceError) {
	return nil, m.reduceErr
}
func (m *mockInventoryService) History(_ context.Context, _ middleware.Identity, _ string, limit int) ([]models.StockHistory, *services.ServiceError) {
	m.gotLimit = limit
	return []models.StockHistory{}, nil
}
func (m *mockInventoryService) CheckStock(context.Context, []models.LineItem) ([]models.StockCheckResult, bool, *services.ServiceError) {
	return nil, true, nil
}
func (m *mockInventoryService) Reserve(_ context.Context, req *models.ItemsRequest) ([]models.StockCheckResult, *services.ServiceError) {
	return m.reserveFn(req)
}
func (m *mockInventoryService) Release(context.Context, *models.ItemsRequest) *services.ServiceError {
	return nil
}
func (m *mockInventoryService) Confirm(context.Context, *models.ItemsRequest) *services.ServiceError {
	return nil
}

func setupRouter(svc services.InventoryService) *gin.Engine {
	r := gin.New()
	routes.RegisterRoutes(r, controllers.NewInventoryController(svc))
	return r
}

func adminRequest(method, path, body, shopID string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, uuid.NewString())
	req.Header.Set(middleware.HeaderUserRole, auth.RoleShopAdmin)
	req.Header.Set(middleware.HeaderShopID, shopID)
	return req
}

func TestCreateStock_StatusCodes(t *testing.T) {
	body := `{"product_id":"` + uuid.NewString() + `","shop_id":"` + uuid.NewString() + `","product_name":"Kurta","quantity":3}`

	w := httptest.NewRecorder()
	setupRouter(&mockInventoryService{created: true}).ServeHTTP(w, adminRequest(http.MethodPost, "/stock", body, ""))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	setupRouter(&mockInventoryService{created: false}).ServeHTTP(w, adminRequest(http.MethodPost, "/stock", body, ""))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReduce_Conflict(t *testing.T) {
	svc := &mockInventoryService{reduceErr: &services.ServiceError{StatusCode: 409, Message: "cannot reduce by 5: only 2 units available"}}
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, adminRequest(http.MethodPost, "/stock/p1/reduce", `{"quantity":5}`, ""))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "only 2 units available")
}

func TestReduce_RejectsZero(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&mockInventoryService{}).ServeHTTP(w, adminRequest(http.MethodPost, "/stock/p1/reduce", `{"quantity":0}`, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListByShop_ShopScope(t *testing.T) {
	own := uuid.NewString()

	w := httptest.NewRecorder()
	setupRouter(&mockInventoryService{}).ServeHTTP(w, adminRequest(http.MethodGet, "/stock/shop/"+own, "", own))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	setupRouter(&mockInventoryService{}).ServeHTTP(w, adminRequest(http.MethodGet, "/stock/shop/"+uuid.NewString(), "", own))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHistory_PassesLimit(t *testing.T) {
	svc := &mockInventoryService{}
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, adminRequest(http.MethodGet, "/stock/p1/history?limit=10", "", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, svc.gotLimit)
}

func TestReserve_Internal(t *testing.T) {
	svc := &mockInventoryService{
		reserveFn: func(req *models.ItemsRequest) ([]models.StockCheckResult, *services.ServiceError) {
			assert.Equal(t, "o-1", req.OrderID)
			return nil, &services.ServiceError{StatusCode: 409, Message: "insufficient stock for product p1"}
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/reserve", bytes.NewBufferString(`{"order_id":"o-1","items":[{"product_id":"p1","quantity":2}]}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetStock_Public(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&mockInventoryService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/p1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"active"`)
}
