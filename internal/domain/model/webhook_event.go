package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// WebhookStatus represents the processing status of a webhook event
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		*j = make(JSONB)
		return nil
	}
}

// WebhookEvent is the audit record of a verified billing webhook event. It
// exists for operator visibility; processing never depends on it.
type WebhookEvent struct {
	ID                int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderEventID   string        `gorm:"unique;not null;size:255;index" json:"provider_event_id"`
	EventType         string        `gorm:"not null;size:100;index" json:"event_type"`
	Status            WebhookStatus `gorm:"type:webhook_status;default:'pending';index" json:"status"`
	ProcessedAt       *time.Time    `json:"processed_at,omitempty"`
	Data              JSONB         `gorm:"type:jsonb;not null" json:"data"`
	LastError         *string       `json:"last_error,omitempty"`
	CreatedAt         time.Time     `gorm:"default:now()" json:"created_at"`
	ProviderCreatedAt *time.Time    `json:"provider_created_at,omitempty"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "billing_webhook_events"
}
