package controllers

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/services"
)

// Stripe sends events well under this size.
const maxWebhookBody = 1 << 16

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// InitiatePayment handles POST /payment/initiate.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req models.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	resp, svcErr := pc.paymentService.Initiate(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StripeWebhook receives and dispatches Stripe webhook events.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}
	if svcErr := pc.paymentService.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// WalletCallback handles the gateway postback. Browser postbacks are
// redirected to the storefront return URL with the outcome.
func (pc *PaymentController) WalletCallback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	fields := make(map[string]string, len(c.Request.Form))
	for k, v := range c.Request.Form {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	payment, svcErr := pc.paymentService.HandleWalletCallback(c.Request.Context(), c.Param("provider"), fields)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	if payment.ReturnURL != "" {
		if u, err := url.Parse(payment.ReturnURL); err == nil {
			q := u.Query()
			q.Set("payment", payment.Status)
			q.Set("order_id", payment.OrderID.String())
			u.RawQuery = q.Encode()
			c.Redirect(http.StatusSeeOther, u.String())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": payment.Status, "order_id": payment.OrderID})
}

// GetPaymentByOrder handles GET /payment/order/:orderId.
func (pc *PaymentController) GetPaymentByOrder(c *gin.Context) {
	payment, svcErr := pc.paymentService.GetByOrder(c.Request.Context(), c.Param("orderId"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}
