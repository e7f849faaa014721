package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
)

// PaymentEventHandler applies payment_succeeded and payment_failed events
// from the payment queue. Messages about unknown orders are dropped.
func PaymentEventHandler(svc OrderService, logger *zap.Logger) awspkg.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		ev, err := events.Decode(body)
		if err != nil {
			return err
		}
		if ev.EventType != events.TypePaymentSucceeded && ev.EventType != events.TypePaymentFailed {
			logger.Debug("Ignoring event", zap.String("event_type", ev.EventType))
			return nil
		}
		var result events.PaymentResult
		if err := ev.DecodeData(&result); err != nil {
			return err
		}
		if err := svc.ApplyPayment(ctx, ev.EventType, result); err != nil {
			if errors.Is(err, ErrUnknownOrder) {
				return fmt.Errorf("%w: %v", awspkg.ErrDropMessage, err)
			}
			logger.Warn("Payment event not applied, will retry",
				zap.String("order_id", result.OrderID),
				zap.String("event_type", ev.EventType),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}
