package services

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"github.com/Khizarkk7/storefront-backend/services/common/events"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/models"
)

//go:embed templates/*
var templateFS embed.FS

type eventConfig struct {
	subject  string
	channels []string
}

// eventConfigs lists the events that produce notifications. Everything else
// on the queue is acknowledged and ignored.
var eventConfigs = map[string]eventConfig{
	events.TypeOrderCreated: {
		subject:  "Order {{.order_number}} received",
		channels: []string{models.ChannelEmail, models.ChannelSMS},
	},
	events.TypeOrderStatusChanged: {
		subject:  "Order {{.order_number}} is {{humanize .to_status}}",
		channels: []string{models.ChannelEmail},
	},
	events.TypePaymentFailed: {
		subject:  "Payment failed",
		channels: []string{models.ChannelEmail, models.ChannelSMS},
	},
	events.TypePasswordResetRequested: {
		subject:  "Your password reset code",
		channels: []string{models.ChannelEmail},
	},
	events.TypeUserRegistered: {
		subject:  "Welcome!",
		channels: []string{models.ChannelEmail},
	},
}

var templateFuncs = map[string]any{
	"money":    money,
	"humanize": humanize,
	"upper":    func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
}

type eventTemplates struct {
	subject *texttemplate.Template
	email   *htmltemplate.Template
	sms     *texttemplate.Template
}

// Templates holds the parsed subject, email and SMS templates per event type.
type Templates struct {
	byEvent map[string]*eventTemplates
}

// LoadTemplates parses the embedded templates. Every configured channel must
// have a template file: <event>.html for email, <event>.txt for SMS.
func LoadTemplates() (*Templates, error) {
	t := &Templates{byEvent: make(map[string]*eventTemplates, len(eventConfigs))}
	for eventType, cfg := range eventConfigs {
		et := &eventTemplates{}
		var err error
		if et.subject, err = texttemplate.New(eventType + ".subject").Funcs(templateFuncs).Parse(cfg.subject); err != nil {
			return nil, fmt.Errorf("failed to parse subject for %s: %w", eventType, err)
		}
		for _, ch := range cfg.channels {
			switch ch {
			case models.ChannelEmail:
				et.email, err = htmltemplate.New(eventType+".html").Funcs(templateFuncs).ParseFS(templateFS, "templates/"+eventType+".html")
			case models.ChannelSMS:
				et.sms, err = texttemplate.New(eventType+".txt").Funcs(templateFuncs).ParseFS(templateFS, "templates/"+eventType+".txt")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s template for %s: %w", ch, eventType, err)
			}
		}
		t.byEvent[eventType] = et
	}
	return t, nil
}

// Render returns subject and body for one channel of one event.
func (t *Templates) Render(eventType, channel string, data map[string]any) (string, string, error) {
	et, ok := t.byEvent[eventType]
	if !ok {
		return "", "", fmt.Errorf("no templates for %s", eventType)
	}

	var body bytes.Buffer
	switch {
	case channel == models.ChannelEmail && et.email != nil:
		if err := et.email.Execute(&body, data); err != nil {
			return "", "", err
		}
	case channel == models.ChannelSMS && et.sms != nil:
		if err := et.sms.Execute(&body, data); err != nil {
			return "", "", err
		}
	default:
		return "", "", fmt.Errorf("no %s template for %s", channel, eventType)
	}

	var subject bytes.Buffer
	if err := et.subject.Execute(&subject, data); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(subject.String()), strings.TrimSpace(body.String()), nil
}

func money(v any) string {
	var d decimal.Decimal
	switch n := v.(type) {
	case float64:
		d = decimal.NewFromFloat(n)
	case json.Number:
		d, _ = decimal.NewFromString(n.String())
	case string:
		d, _ = decimal.NewFromString(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	}
	return d.StringFixed(2)
}

// humanize turns "out_for_delivery" into "out for delivery".
func humanize(v any) string {
	if v == nil {
		return ""
	}
	return strings.ReplaceAll(fmt.Sprint(v), "_", " ")
}
