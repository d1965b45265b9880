package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ledgerline/payment-orchestrator/internal/domain/model"
)

// Migrate creates or updates the tables backing the durable store.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(
		&model.PaymentIntent{},
		&model.Charge{},
		&model.IdempotencyKey{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}
