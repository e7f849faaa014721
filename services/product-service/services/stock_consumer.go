package services

import (
	"context"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
)

// StockEventHandler keeps product stock in step with inventory-service.
// Events other than stock_changed are acknowledged and ignored.
func StockEventHandler(svc ProductService, logger *zap.Logger) awspkg.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		ev, err := events.Decode(body)
		if err != nil {
			return err
		}
		if ev.EventType != events.TypeStockChanged {
			logger.Debug("Ignoring event", zap.String("event_type", ev.EventType))
			return nil
		}
		var change events.StockChanged
		if err := ev.DecodeData(&change); err != nil {
			return err
		}
		if change.ProductID == "" {
			return nil
		}
		return svc.ApplyStockChange(ctx, change)
	}
}
