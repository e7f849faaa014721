package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khizarkk7/storefront-backend/services/payment-service/controllers"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/routes"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockPaymentService struct {
	initiateFn func(req *models.InitiateRequest) (*models.InitiateResponse, *services.ServiceError)
	webhookFn  func(payload []byte, sig string) *services.ServiceError
	callbackFn func(provider string, fields map[string]string) (*models.Payment, *services.ServiceError)
}

func (m *mockPaymentService) Initiate(_ context.Context, req *models.InitiateRequest) (*models.InitiateResponse, *services.ServiceError) {
	return m.initiateFn(req)
}
func (m *mockPaymentService) HandleStripeWebhook(_ context.Context, payload []byte, sig string) *services.ServiceError {
	return m.webhookFn(payload, sig)
}
func (m *mockPaymentService) HandleWalletCallback(_ context.Context, provider string, fields map[string]string) (*models.Payment, *services.ServiceError) {
	return m.callbackFn(provider, fields)
}
func (m *mockPaymentService) GetByOrder(_ context.Context, orderID string) (*models.Payment, *services.ServiceError) {
	if orderID == "none" {
		return nil, &services.ServiceError{StatusCode: 404, Message: "no payment for this order"}
	}
	return &models.Payment{Status: models.StatusPending, Provider: models.ProviderStripe}, nil
}

func setupRouter(svc services.PaymentService) *gin.Engine {
	r := gin.New()
	routes.RegisterPaymentRoutes(r, controllers.NewPaymentController(svc))
	return r
}

func TestInitiatePayment(t *testing.T) {
	orderID := uuid.NewString()
	svc := &mockPaymentService{initiateFn: func(req *models.InitiateRequest) (*models.InitiateResponse, *services.ServiceError) {
		assert.Equal(t, orderID, req.OrderID)
		return &models.InitiateResponse{Success: true, PaymentURL: "https://pay.test/1", OrderID: req.OrderID}, nil
	}}
	body, _ := json.Marshal(map[string]string{"order_id": orderID, "return_url": "https://shop.example/done"})
	req := httptest.NewRequest(http.MethodPost, "/payment/initiate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.InitiateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://pay.test/1", resp.PaymentURL)
}

func TestInitiatePayment_BadRequest(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"order_id": "nope"})
	req := httptest.NewRequest(http.MethodPost, "/payment/initiate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	setupRouter(&mockPaymentService{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook_PassesRawBodyAndSignature(t *testing.T) {
	raw := `{"id":"evt_1"}`
	svc := &mockPaymentService{webhookFn: func(payload []byte, sig string) *services.ServiceError {
		assert.Equal(t, raw, string(payload))
		assert.Equal(t, "t=1,v1=abc", sig)
		return nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(raw))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	svc := &mockPaymentService{webhookFn: func([]byte, string) *services.ServiceError {
		return &services.ServiceError{StatusCode: 400, Message: "invalid webhook"}
	}}
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader("{}")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletCallback_RedirectsToReturnURL(t *testing.T) {
	orderID := uuid.New()
	svc := &mockPaymentService{callbackFn: func(provider string, fields map[string]string) (*models.Payment, *services.ServiceError) {
		assert.Equal(t, "jazzcash", provider)
		assert.Equal(t, "T123", fields["pp_TxnRefNo"])
		return &models.Payment{OrderID: orderID, Status: models.StatusSucceeded, ReturnURL: "https://shop.example/done"}, nil
	}}
	form := url.Values{"pp_TxnRefNo": {"T123"}, "pp_ResponseCode": {"000"}}
	req := httptest.NewRequest(http.MethodPost, "/payment/callback/jazzcash", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "shop.example", loc.Host)
	assert.Equal(t, models.StatusSucceeded, loc.Query().Get("payment"))
	assert.Equal(t, orderID.String(), loc.Query().Get("order_id"))
}

func TestWalletCallback_Error(t *testing.T) {
	svc := &mockPaymentService{callbackFn: func(string, map[string]string) (*models.Payment, *services.ServiceError) {
		return nil, &services.ServiceError{StatusCode: 400, Message: "invalid signature"}
	}}
	req := httptest.NewRequest(http.MethodPost, "/payment/callback/easypaisa", strings.NewReader("pp_TxnRefNo=T1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
}

func TestGetPaymentByOrder(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&mockPaymentService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/order/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider":"stripe"`)

	w = httptest.NewRecorder()
	setupRouter(&mockPaymentService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/order/none", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
