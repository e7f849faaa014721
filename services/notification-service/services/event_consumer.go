package services

import (
	"context"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
)

// EventHandler adapts the service to the SQS consumer.
func EventHandler(svc NotificationService, logger *zap.Logger) awspkg.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		ev, err := events.Decode(body)
		if err != nil {
			return err
		}
		if err := svc.ProcessEvent(ctx, ev); err != nil {
			logger.Error("failed to process event", zap.String("event_type", ev.EventType), zap.Error(err))
			return err
		}
		return nil
	}
}
