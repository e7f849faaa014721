package services

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// ErrStripeDisabled is returned when no Stripe secret key is configured.
var ErrStripeDisabled = errors.New("stripe is not configured")

type CheckoutInput struct {
	PaymentID   string
	OrderID     string
	OrderNumber string
	Email       string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// CardGateway creates hosted checkout pages and verifies webhooks.
type CardGateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (id, url string, err error)
	ParseWebhook(payload []byte, signature string) (stripe.Event, error)
}

type StripeService struct {
	SecretKey  string
	WebhookKey string
}

func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey}
}

// CreateCheckoutSession opens a one-line Checkout Session for the order.
// The order and payment ids travel as metadata on both the session and
// its payment intent.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, string, error) {
	if s.SecretKey == "" {
		return "", "", ErrStripeDisabled
	}
	meta := map[string]string{"order_id": in.OrderID, "payment_id": in.PaymentID}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.OrderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(in.Currency),
				UnitAmount: stripe.Int64(in.AmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order " + in.OrderNumber),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: meta},
		Metadata:          meta,
	}
	if in.Email != "" {
		params.CustomerEmail = stripe.String(in.Email)
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}

// ParseWebhook checks the Stripe-Signature header against the raw body.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, s.WebhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
