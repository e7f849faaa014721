package sender

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Provider names reported in SendResult.
const (
	ProviderSMTP   = "smtp"
	ProviderSNS    = "sns"
	ProviderTwilio = "twilio"
	ProviderLog    = "log"
)

// ErrHeaderInjection is returned for recipients or subjects carrying CR/LF.
var ErrHeaderInjection = errors.New("invalid header value")

// SendResult identifies one accepted message at its provider.
type SendResult struct {
	Provider  string
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, msg string) (SendResult, error)
}

func accepted(provider, messageID string) SendResult {
	return SendResult{Provider: provider, MessageID: messageID, SentAt: time.Now()}
}

func safeHeader(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrHeaderInjection
		}
	}
	return nil
}
