package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/product-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/product-service/models"
	"github.com/Khizarkk7/storefront-backend/services/product-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/product-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockProductService struct {
	listFn   func(ctx context.Context, shopID string, q models.ListQuery, p pagination.Params) (*models.ProductPage, *services.ServiceError)
	createFn func(ctx context.Context, caller middleware.Identity, req *models.CreateProductRequest, image *models.ImageUpload) (*models.ProductView, *services.ServiceError)
	updateFn func(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateProductRequest, image *models.ImageUpload) (*models.ProductView, *services.ServiceError)
}

func (m *mockProductService) ListByShop(ctx context.Context, shopID string, q models.ListQuery, p pagination.Params) (*models.ProductPage, *services.ServiceError) {
	return m.listFn(ctx, shopID, q, p)
}
func (m *mockProductService) GetProduct(context.Context, string) (*models.ProductView, *services.ServiceError) {
	return nil, &services.ServiceError{StatusCode: 404, Message: "product not found"}
}
func (m *mockProductService) CreateProduct(ctx context.Context, caller middleware.Identity, req *models.CreateProductRequest, image *models.ImageUpload) (*models.ProductView, *services.ServiceError) {
	return m.createFn(ctx, caller, req, image)
}
func (m *mockProductService) UpdateProduct(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateProductRequest, image *models.ImageUpload) (*models.ProductView, *services.ServiceError) {
	return m.updateFn(ctx, caller, id, req, image)
}
func (m *mockProductService) DeleteProduct(context.Context, middleware.Identity, string) *services.ServiceError {
	return nil
}
func (m *mockProductService) PresignImage(context.Context, middleware.Identity, *models.PresignRequest) (*models.PresignResponse, *services.ServiceError) {
	return &models.PresignResponse{Method: "PUT"}, nil
}
func (m *mockProductService) ApplyStockChange(context.Context, events.StockChanged) error {
	return nil
}

func setupRouter(svc services.ProductService) *gin.Engine {
	r := gin.New()
	routes.RegisterProductRoutes(r, controllers.NewProductController(svc))
	return r
}

func withRole(req *http.Request, role, shopID string) {
	req.Header.Set(middleware.HeaderUserID, uuid.NewString())
	req.Header.Set(middleware.HeaderUserRole, role)
	req.Header.Set(middleware.HeaderShopID, shopID)
}

func TestListByShop_PublicWithQuery(t *testing.T) {
	shopID := uuid.NewString()
	var gotQuery models.ListQuery
	var gotParams pagination.Params
	svc := &mockProductService{
		listFn: func(_ context.Context, id string, q models.ListQuery, p pagination.Params) (*models.ProductPage, *services.ServiceError) {
			assert.Equal(t, shopID, id)
			gotQuery, gotParams = q, p
			return &models.ProductPage{Data: []models.ProductView{}, Meta: pagination.NewMeta(p, 0)}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/shop/"+shopID+"?status=low_stock&search=lawn&page=2&limit=5", nil)
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ListQuery{Status: "low_stock", Search: "lawn"}, gotQuery)
	assert.Equal(t, 2, gotParams.Page)
	assert.Equal(t, 5, gotParams.Limit)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "meta")
}

func TestCreateProduct_JSON(t *testing.T) {
	shopID := uuid.NewString()
	svc := &mockProductService{
		createFn: func(_ context.Context, caller middleware.Identity, req *models.CreateProductRequest, image *models.ImageUpload) (*models.ProductView, *services.ServiceError) {
			assert.Equal(t, shopID, caller.ShopID)
			assert.Nil(t, image)
			require.NotNil(t, req.StockQuantity)
			assert.Equal(t, 0, *req.StockQuantity)
			return &models.ProductView{Product: models.Product{ID: uuid.NewString(), ShopID: shopID}, Status: "out_of_stock"}, nil
		},
	}
	payload := `{"shop_id":"` + shopID + `","product_name":"Lawn Suit","price":2500,"stock_quantity":0}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	withRole(req, auth.RoleShopAdmin, shopID)
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"out_of_stock"`)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"product_name":"ab","price":0}`))
	req.Header.Set("Content-Type", "application/json")
	withRole(req, auth.RoleSystemAdmin, "")
	setupRouter(&mockProductService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "details")
}

func TestCreateProduct_CustomerForbidden(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	withRole(req, auth.RoleCustomer, "")
	setupRouter(&mockProductService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateProduct_MultipartImage(t *testing.T) {
	shopID := uuid.NewString()
	productID := uuid.NewString()
	svc := &mockProductService{
		updateFn: func(_ context.Context, _ middleware.Identity, id string, req *models.UpdateProductRequest, image *models.ImageUpload) (*models.ProductView, *services.ServiceError) {
			assert.Equal(t, productID, id)
			require.NotNil(t, req.Price)
			assert.Equal(t, 1999.0, *req.Price)
			assert.Nil(t, req.StockQuantity)
			require.NotNil(t, image)
			data, _ := io.ReadAll(image.Body)
			assert.Equal(t, "fake-image", string(data))
			return &models.ProductView{Product: models.Product{ID: id}}, nil
		},
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("price", "1999"))
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake-image"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/"+productID, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	withRole(req, auth.RoleShopAdmin, shopID)
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	setupRouter(&mockProductService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, w.Body.String())
}

func TestDeleteProduct_RequiresAuth(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/products/"+uuid.NewString(), nil)
	setupRouter(&mockProductService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
