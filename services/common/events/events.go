package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
)

const (
	TypeUserRegistered         = "user_registered"
	TypePasswordResetRequested = "password_reset_requested"
	TypeOrderCreated           = "order_created"
	TypeOrderStatusChanged     = "order_status_changed"
	TypePaymentSucceeded       = "payment_succeeded"
	TypePaymentFailed          = "payment_failed"
	TypeStockChanged           = "stock_changed"
)

// Event is the envelope every service publishes to SNS.
type Event struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Decode parses an envelope; failures wrap awspkg.ErrDropMessage so the SQS
// consumer discards the message instead of retrying it forever.
func Decode(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: decode event: %v", awspkg.ErrDropMessage, err)
	}
	if ev.EventType == "" {
		return ev, fmt.Errorf("%w: missing event_type", awspkg.ErrDropMessage)
	}
	return ev, nil
}

// DecodeData unmarshals ev.Data into out.
func (ev Event) DecodeData(out any) error {
	if err := json.Unmarshal(ev.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", awspkg.ErrDropMessage, ev.EventType, err)
	}
	return nil
}

type attributePublisher interface {
	PublishEvent(ctx context.Context, topicArn, eventType string, message []byte) error
}

// Publisher sends events to one SNS topic. Publishing is best effort:
// failures are logged and never fail the business operation.
type Publisher struct {
	sns    awspkg.SNSPublisher
	topic  string
	logger *zap.Logger
}

func NewPublisher(sns awspkg.SNSPublisher, topicArn string, logger *zap.Logger) *Publisher {
	if sns == nil {
		sns = awspkg.NoopPublisher{}
	}
	return &Publisher{sns: sns, topic: topicArn, logger: logger}
}

// Publish wraps data in an envelope and sends it.
func (p *Publisher) Publish(ctx context.Context, eventType string, data any) {
	if p == nil || p.topic == "" {
		return
	}
	payload, err := Marshal(eventType, data)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	if ap, ok := p.sns.(attributePublisher); ok {
		err = ap.PublishEvent(ctx, p.topic, eventType, payload)
	} else {
		err = p.sns.Publish(ctx, p.topic, payload)
	}
	if err != nil {
		p.logger.Error("failed to publish event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	p.logger.Debug("event published", zap.String("event_type", eventType))
}

// Marshal builds the JSON envelope for data.
func Marshal(eventType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{EventType: eventType, OccurredAt: time.Now().UTC(), Data: raw})
}
