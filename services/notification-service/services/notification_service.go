package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/Khizarkk7/storefront-backend/pkg/aws"
	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/models"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/repository"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/sender"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Metrics is satisfied by *awspkg.MetricsClient.
type Metrics interface {
	RecordAsync(metricName string, dimensions map[string]string)
}

// Retry controls delivery attempts. Attempt n waits (n-1)*Backoff first.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultRetry = Retry{Attempts: 3, Backoff: time.Second}

type NotificationService interface {
	ProcessEvent(ctx context.Context, ev events.Event) error
	GetLogs(ctx context.Context, filter models.NotificationFilter, p pagination.Params) ([]models.NotificationLog, int64, *ServiceError)
}

type notificationService struct {
	repo      repository.NotificationRepository
	email     sender.EmailSender
	sms       sender.SMSSender
	templates *Templates
	retry     Retry
	metrics   Metrics
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewNotificationService(
	repo repository.NotificationRepository,
	email sender.EmailSender,
	sms sender.SMSSender,
	templates *Templates,
	retry Retry,
	metrics Metrics,
	logger *zap.Logger,
) NotificationService {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	return &notificationService{
		repo:      repo,
		email:     email,
		sms:       sms,
		templates: templates,
		retry:     retry,
		metrics:   metrics,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

var errChannelDisabled = errors.New("channel not configured")

// ProcessEvent renders and sends every channel configured for the event.
// Delivery failures are logged, not returned: the queue message is done once
// each channel has had its attempts.
func (s *notificationService) ProcessEvent(ctx context.Context, ev events.Event) error {
	cfg, ok := eventConfigs[ev.EventType]
	if !ok {
		s.logger.Debug("ignoring event", zap.String("event_type", ev.EventType))
		return nil
	}

	var data map[string]any
	if err := ev.DecodeData(&data); err != nil {
		return err
	}
	ref := reference(data)

	for _, channel := range cfg.channels {
		to := recipient(data, channel)
		if to == "" {
			s.logger.Warn("missing recipient, skipping channel",
				zap.String("channel", channel),
				zap.String("event_type", ev.EventType),
				zap.String("reference", ref),
			)
			continue
		}

		subject, body, err := s.templates.Render(ev.EventType, channel, data)
		if err != nil {
			return fmt.Errorf("%w: render %s %s: %v", awspkg.ErrDropMessage, ev.EventType, channel, err)
		}

		s.deliver(ctx, models.Message{
			EventType: ev.EventType,
			Reference: ref,
			Channel:   channel,
			To:        to,
			Subject:   subject,
			Body:      body,
		})
	}
	return nil
}

// deliver tries the message up to retry.Attempts times and records every
// attempt in notification_logs.
func (s *notificationService) deliver(ctx context.Context, msg models.Message) bool {
	var lastErr error
	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		if attempt > 1 {
			if err := s.sleep(ctx, time.Duration(attempt-1)*s.retry.Backoff); err != nil {
				lastErr = err
				break
			}
		}

		result, err := s.send(ctx, msg)
		entry := &models.NotificationLog{
			EventType: msg.EventType,
			Reference: msg.Reference,
			Recipient: msg.To,
			Channel:   msg.Channel,
			Attempt:   attempt,
		}
		if err == nil {
			entry.Status = models.StatusSent
			entry.MessageID = result.MessageID
		} else {
			entry.Status = models.StatusFailed
			entry.Error = err.Error()
		}
		s.saveLog(ctx, entry)

		if err == nil {
			s.metrics.RecordAsync(awspkg.MetricNotificationSent, map[string]string{"Channel": msg.Channel, "EventType": msg.EventType})
			s.logger.Info("notification sent",
				zap.String("event_type", msg.EventType),
				zap.String("channel", msg.Channel),
				zap.String("reference", msg.Reference),
				zap.Int("attempt", attempt),
				zap.String("provider", result.Provider),
				zap.String("message_id", result.MessageID),
			)
			return true
		}

		lastErr = err
		s.logger.Warn("send attempt failed",
			zap.String("event_type", msg.EventType),
			zap.String("channel", msg.Channel),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if errors.Is(err, errChannelDisabled) {
			break
		}
	}

	s.logger.Error("notification not delivered",
		zap.String("event_type", msg.EventType),
		zap.String("channel", msg.Channel),
		zap.String("reference", msg.Reference),
		zap.Error(lastErr),
	)
	return false
}

func (s *notificationService) send(ctx context.Context, msg models.Message) (sender.SendResult, error) {
	switch msg.Channel {
	case models.ChannelEmail:
		if s.email == nil {
			return sender.SendResult{}, errChannelDisabled
		}
		return s.email.SendEmail(ctx, msg.To, msg.Subject, msg.Body)
	case models.ChannelSMS:
		if s.sms == nil {
			return sender.SendResult{}, errChannelDisabled
		}
		return s.sms.SendSMS(ctx, msg.To, msg.Body)
	}
	return sender.SendResult{}, fmt.Errorf("unknown channel %q", msg.Channel)
}

func (s *notificationService) saveLog(ctx context.Context, entry *models.NotificationLog) {
	if err := s.repo.SaveLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to save notification log", zap.Error(err))
	}
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter, p pagination.Params) ([]models.NotificationLog, int64, *ServiceError) {
	if filter.Channel != "" && filter.Channel != models.ChannelEmail && filter.Channel != models.ChannelSMS {
		return nil, 0, &ServiceError{StatusCode: 400, Message: "invalid channel"}
	}
	if filter.Status != "" && filter.Status != models.StatusSent && filter.Status != models.StatusFailed {
		return nil, 0, &ServiceError{StatusCode: 400, Message: "invalid status"}
	}
	logs, total, err := s.repo.GetLogs(ctx, filter, p)
	if err != nil {
		s.logger.Error("failed to list notification logs", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "failed to list notifications"}
	}
	return logs, total, nil
}

func recipient(data map[string]any, channel string) string {
	key := "email"
	if channel == models.ChannelSMS {
		key = "phone"
	}
	v, _ := data[key].(string)
	v = strings.TrimSpace(v)
	if channel == models.ChannelEmail {
		v = strings.ToLower(v)
	}
	return v
}

func reference(data map[string]any) string {
	for _, key := range []string{"order_number", "order_id", "user_id"} {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
