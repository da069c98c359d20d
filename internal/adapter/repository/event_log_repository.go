package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventLogRepository records verified webhook events for operator visibility
type EventLogRepository interface {
	SaveEvent(ctx context.Context, eventID, eventType string, created int64, data json.RawMessage) error
	GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
	GetRecentEvents(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}

type eventLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEventLogRepository creates a new event log repository
func NewEventLogRepository(db *gorm.DB, logger *zap.Logger) EventLogRepository {
	return &eventLogRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent saves a new webhook event. Redelivered events are ignored so the
// log keeps one row per provider event ID.
func (r *eventLogRepository) SaveEvent(ctx context.Context, eventID, eventType string, created int64, data json.RawMessage) error {
	var eventData map[string]interface{}
	if err := json.Unmarshal(data, &eventData); err != nil {
		r.logger.Warn("Failed to parse event payload for audit log",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	var providerCreatedAt *time.Time
	if created > 0 {
		t := time.Unix(created, 0)
		providerCreatedAt = &t
	}

	event := &model.WebhookEvent{
		ProviderEventID:   eventID,
		EventType:         eventType,
		Status:            model.WebhookStatusPending,
		Data:              model.JSONB(eventData),
		ProviderCreatedAt: providerCreatedAt,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error

	if err != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(err))
		return fmt.Errorf("failed to save webhook event: %w", err)
	}

	return nil
}

// GetEvent retrieves a webhook event by provider event ID
func (r *eventLogRepository) GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// MarkProcessed marks a webhook event as processed
func (r *eventLogRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusCompleted,
			"processed_at": &now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed marks a webhook event as failed and records the cause
func (r *eventLogRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	return nil
}

// GetRecentEvents retrieves the most recently received webhook events
func (r *eventLogRepository) GetRecentEvents(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to get recent webhook events", zap.Error(err))
		return nil, fmt.Errorf("failed to get recent webhook events: %w", err)
	}

	return events, nil
}
