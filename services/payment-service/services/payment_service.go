package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/client"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
	"github.com/Khizarkk7/storefront-backend/services/payment-service/repository"
)

type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any)
}

// Metrics is satisfied by *awspkg.MetricsClient.
type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

type PaymentService interface {
	Initiate(ctx context.Context, req *models.InitiateRequest) (*models.InitiateResponse, *ServiceError)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) *ServiceError
	HandleWalletCallback(ctx context.Context, provider string, fields map[string]string) (*models.Payment, *ServiceError)
	GetByOrder(ctx context.Context, orderID string) (*models.Payment, *ServiceError)
}

type Options struct {
	Currency string
	// PostbackBaseURL is the public URL wallet gateways post back to; the
	// provider name is appended.
	PostbackBaseURL string
	// ReturnOrigins lists the storefront origins a return_url may point at.
	// "*" allows any.
	ReturnOrigins []string
	Wallets       map[string]WalletProvider
}

type paymentServiceImpl struct {
	repo    repository.PaymentRepository
	orders  Orders
	card    CardGateway
	opts    Options
	events  EventPublisher
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewPaymentService(repo repository.PaymentRepository, orders Orders, card CardGateway, opts Options, publisher EventPublisher, metrics Metrics, logger *zap.Logger) PaymentService {
	if opts.Currency == "" {
		opts.Currency = "pkr"
	}
	return &paymentServiceImpl{
		repo:    repo,
		orders:  orders,
		card:    card,
		opts:    opts,
		events:  publisher,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

var methodProvider = map[string]string{
	"card":      models.ProviderStripe,
	"jazzcash":  models.ProviderJazzCash,
	"easypaisa": models.ProviderEasypaisa,
}

func (s *paymentServiceImpl) Initiate(ctx context.Context, req *models.InitiateRequest) (*models.InitiateResponse, *ServiceError) {
	if !AllowedReturnURL(req.ReturnURL, s.opts.ReturnOrigins) {
		return nil, &ServiceError{StatusCode: 400, Message: "return_url origin is not allowed"}
	}
	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		var se *client.StatusError
		if errors.As(err, &se) && se.StatusCode == 404 {
			return nil, &ServiceError{StatusCode: 404, Message: "order not found"}
		}
		s.logger.Error("Failed to load order", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 502, Message: "order service unavailable"}
	}

	if order.PaymentMethod == "cod" {
		return nil, &ServiceError{StatusCode: 400, Message: "cash on delivery orders are paid on delivery"}
	}
	provider, ok := methodProvider[order.PaymentMethod]
	if !ok {
		return nil, &ServiceError{StatusCode: 400, Message: "unsupported payment method: " + order.PaymentMethod}
	}
	if order.PaymentStatus == "paid" {
		return nil, &ServiceError{StatusCode: 409, Message: "order is already paid"}
	}
	if order.OrderStatus == "cancelled" {
		return nil, &ServiceError{StatusCode: 409, Message: "order is cancelled"}
	}

	if open, err := s.repo.FindOpen(ctx, order.ID, provider); err == nil {
		return &models.InitiateResponse{
			Success:    true,
			PaymentURL: open.PaymentURL,
			OrderID:    order.ID.String(),
			PaymentID:  open.ID.String(),
			Provider:   provider,
			Reused:     true,
		}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to look up open payment", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to initiate payment"}
	}

	amount := order.GrandTotal.Round(2)
	if !amount.IsPositive() {
		return nil, &ServiceError{StatusCode: 400, Message: "order total must be greater than zero"}
	}
	payment := &models.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Provider:      provider,
		Amount:        amount,
		Currency:      s.opts.Currency,
		Status:        models.StatusPending,
		ReturnURL:     req.ReturnURL,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to create payment", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to initiate payment"}
	}

	ref, paymentURL, svcErr := s.openSession(ctx, payment, order, req.ReturnURL)
	if svcErr != nil {
		if _, err := s.repo.Resolve(ctx, payment.ID, models.StatusFailed, svcErr.Message); err != nil {
			s.logger.Warn("Failed to mark payment failed", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		}
		return nil, svcErr
	}
	if err := s.repo.SetSession(ctx, payment.ID, ref, paymentURL); err != nil {
		s.logger.Error("Failed to save payment session", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to initiate payment"}
	}

	s.logger.Info("Payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", req.OrderID),
		zap.String("provider", provider),
	)
	return &models.InitiateResponse{
		Success:    true,
		PaymentURL: paymentURL,
		OrderID:    order.ID.String(),
		PaymentID:  payment.ID.String(),
		Provider:   provider,
	}, nil
}

func (s *paymentServiceImpl) openSession(ctx context.Context, payment *models.Payment, order *models.OrderView, returnURL string) (string, string, *ServiceError) {
	minor := payment.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	if payment.Provider == models.ProviderStripe {
		id, u, err := s.card.CreateCheckoutSession(ctx, CheckoutInput{
			PaymentID:   payment.ID.String(),
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
			Email:       order.CustomerEmail,
			AmountMinor: minor,
			Currency:    payment.Currency,
			SuccessURL:  withQuery(returnURL, "payment", "success"),
			CancelURL:   withQuery(returnURL, "payment", "cancelled"),
		})
		if err != nil {
			if errors.Is(err, ErrStripeDisabled) {
				return "", "", &ServiceError{StatusCode: 503, Message: "card payments are not available"}
			}
			s.logger.Error("Stripe checkout session failed", zap.String("order_id", order.ID.String()), zap.Error(err))
			return "", "", &ServiceError{StatusCode: 502, Message: "payment provider error"}
		}
		return id, u, nil
	}

	wallet, ok := s.opts.Wallets[payment.Provider]
	if !ok || !wallet.Enabled() {
		return "", "", &ServiceError{StatusCode: 503, Message: payment.Provider + " payments are not available"}
	}
	ref := NewTxnRef(s.now())
	postback := strings.TrimRight(s.opts.PostbackBaseURL, "/") + "/" + payment.Provider
	return ref, wallet.RedirectURL(ref, order.OrderNumber, minor, payment.Currency, postback, s.now()), nil
}

func (s *paymentServiceImpl) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) *ServiceError {
	event, err := s.card.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		return &ServiceError{StatusCode: 400, Message: "invalid webhook"}
	}

	s.logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			s.logger.Error("Failed to unmarshal checkout session", zap.Error(err))
			return &ServiceError{StatusCode: 400, Message: "invalid checkout session"}
		}
		payment, svcErr := s.findStripePayment(ctx, sess.ID, sess.Metadata["payment_id"])
		if svcErr != nil || payment == nil {
			return svcErr
		}
		if event.Type == "checkout.session.expired" {
			return s.resolve(ctx, payment, models.StatusExpired, "checkout session expired")
		}
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			s.logger.Info("Checkout completed without payment yet", zap.String("session_id", sess.ID))
			return nil
		}
		return s.resolve(ctx, payment, models.StatusSucceeded, "")

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			s.logger.Error("Failed to unmarshal payment intent", zap.Error(err))
			return &ServiceError{StatusCode: 400, Message: "invalid payment intent"}
		}
		payment, svcErr := s.findStripePayment(ctx, "", pi.Metadata["payment_id"])
		if svcErr != nil || payment == nil {
			return svcErr
		}
		reason := "card payment failed"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			reason = pi.LastPaymentError.Msg
		}
		return s.resolve(ctx, payment, models.StatusFailed, reason)

	default:
		s.logger.Debug("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		return nil
	}
}

// findStripePayment looks a payment up by session id, then by the
// payment_id metadata. Unknown payments are acknowledged so Stripe stops
// retrying them.
func (s *paymentServiceImpl) findStripePayment(ctx context.Context, sessionID, paymentID string) (*models.Payment, *ServiceError) {
	var (
		payment *models.Payment
		err     = repository.ErrNotFound
	)
	if sessionID != "" {
		payment, err = s.repo.FindByProviderRef(ctx, models.ProviderStripe, sessionID)
	}
	if errors.Is(err, repository.ErrNotFound) && paymentID != "" {
		if id, perr := uuid.Parse(paymentID); perr == nil {
			payment, err = s.repo.FindByID(ctx, id)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Webhook for unknown payment", zap.String("session_id", sessionID), zap.String("payment_id", paymentID))
			return nil, nil
		}
		s.logger.Error("Failed to load payment", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load payment"}
	}
	return payment, nil
}

func (s *paymentServiceImpl) HandleWalletCallback(ctx context.Context, provider string, fields map[string]string) (*models.Payment, *ServiceError) {
	wallet, ok := s.opts.Wallets[provider]
	if !ok || !wallet.Enabled() {
		return nil, &ServiceError{StatusCode: 404, Message: "unknown payment provider"}
	}
	if !wallet.Verify(fields) {
		s.logger.Warn("Wallet callback signature mismatch", zap.String("provider", provider), zap.String("ref", fields[FieldTxnRefNo]))
		return nil, &ServiceError{StatusCode: 400, Message: "invalid signature"}
	}
	payment, err := s.repo.FindByProviderRef(ctx, provider, fields[FieldTxnRefNo])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "payment not found"}
		}
		s.logger.Error("Failed to load payment", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load payment"}
	}

	status, reason := models.StatusSucceeded, ""
	if code := fields[FieldResponseCode]; code != WalletSuccessCode {
		status = models.StatusFailed
		reason = strings.TrimSpace(fields[FieldResponseMessage])
		if reason == "" {
			reason = "gateway response code " + code
		}
	}
	if svcErr := s.resolve(ctx, payment, status, reason); svcErr != nil {
		return nil, svcErr
	}
	return payment, nil
}

func (s *paymentServiceImpl) GetByOrder(ctx context.Context, orderID string) (*models.Payment, *ServiceError) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid order id"}
	}
	payment, err := s.repo.FindLatestByOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "no payment for this order"}
		}
		s.logger.Error("Failed to load payment", zap.String("order_id", orderID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load payment"}
	}
	return payment, nil
}

// resolve records a terminal status once and publishes the matching event.
// payment is updated in place.
func (s *paymentServiceImpl) resolve(ctx context.Context, payment *models.Payment, status, reason string) *ServiceError {
	if payment.Terminal() {
		s.logger.Info("Skipping duplicate payment update",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", payment.Status),
		)
		return nil
	}
	changed, err := s.repo.Resolve(ctx, payment.ID, status, reason)
	if err != nil {
		s.logger.Error("Failed to update payment status", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to update payment"}
	}
	if !changed {
		return nil
	}
	payment.Status = status
	payment.FailureReason = reason

	var eventType, metric string
	switch status {
	case models.StatusSucceeded:
		eventType, metric = events.TypePaymentSucceeded, awspkg.MetricPaymentSucceeded
	case models.StatusFailed:
		eventType, metric = events.TypePaymentFailed, awspkg.MetricPaymentFailed
	default:
		s.logger.Info("Payment closed", zap.String("payment_id", payment.ID.String()), zap.String("status", status))
		return nil
	}

	amount, _ := payment.Amount.Float64()
	s.events.Publish(ctx, eventType, events.PaymentResult{
		PaymentID:   payment.ID.String(),
		OrderID:     payment.OrderID.String(),
		Provider:    payment.Provider,
		Amount:      amount,
		Currency:    payment.Currency,
		Status:      status,
		ProviderRef: payment.ProviderRef,
		Email:       payment.CustomerEmail,
		Phone:       payment.CustomerPhone,
		Reason:      reason,
	})
	s.metrics.RecordAsync(metric, map[string]string{"Provider": payment.Provider})
	s.logger.Info("Payment resolved",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", payment.OrderID.String()),
		zap.String("status", status),
	)
	return nil
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// AllowedReturnURL reports whether raw is an absolute http(s) URL whose
// origin is in origins.
func AllowedReturnURL(raw string, origins []string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	origin := strings.ToLower(u.Scheme + "://" + u.Host)
	for _, o := range origins {
		if o == "*" || strings.ToLower(strings.TrimRight(o, "/")) == origin {
			return true
		}
	}
	return false
}
