package sender

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogSender stands in for an unconfigured channel in local runs: it writes
// the message to the log and reports success.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) SendEmail(_ context.Context, to, subject, body string) (SendResult, error) {
	l.logger.Info("email (log only)", zap.String("to", to), zap.String("subject", subject), zap.Int("bytes", len(body)))
	return accepted(ProviderLog, "log-"+uuid.NewString()), nil
}

func (l *LogSender) SendSMS(_ context.Context, to, msg string) (SendResult, error) {
	l.logger.Info("sms (log only)", zap.String("to", to), zap.String("body", msg))
	return accepted(ProviderLog, "log-"+uuid.NewString()), nil
}
