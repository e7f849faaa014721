package models

import "time"

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	StatusSent   = "sent"
	StatusFailed = "failed"
)

// NotificationLog is one delivery attempt on one channel.
type NotificationLog struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EventType string    `json:"event_type" gorm:"size:64;index"`
	Reference string    `json:"reference,omitempty" gorm:"size:64;index"`
	Recipient string    `json:"recipient" gorm:"size:255;index"`
	Channel   string    `json:"channel" gorm:"size:16;index"`
	Status    string    `json:"status" gorm:"size:16;index"`
	Attempt   int       `json:"attempt"`
	MessageID string    `json:"message_id,omitempty" gorm:"size:128"`
	Error     string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (NotificationLog) TableName() string { return "notification_logs" }

type NotificationFilter struct {
	Status    string
	Channel   string
	Recipient string
}

// Message is a rendered notification ready for a sender.
type Message struct {
	EventType string
	Reference string
	Channel   string
	To        string
	Subject   string
	Body      string
}
