package database

import (
	"github.com/wekeepgrowing/entitlement-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the event log
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	if err := db.AutoMigrate(&model.WebhookEvent{}); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// Partial index for operators scanning unprocessed events.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_billing_webhook_events_unprocessed ON billing_webhook_events (created_at) WHERE status IN ('pending', 'failed')`).Error; err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomTypes creates custom PostgreSQL types
func createCustomTypes(db *gorm.DB) error {
	var exists bool
	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'webhook_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE webhook_status AS ENUM ('pending', 'completed', 'failed')`).Error; err != nil {
			return err
		}
	}
	return nil
}
