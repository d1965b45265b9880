package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/model"
	domainrepo "github.com/ledgerline/payment-orchestrator/internal/domain/repository"
)

// PostgresLedger records idempotency keys alongside the entities they name.
// A per-key advisory transaction lock serializes concurrent creates, so the
// check-then-insert is a single critical section even across processes.
type PostgresLedger struct {
	db    *gorm.DB
	store domainrepo.RecordStore
}

func NewPostgresLedger(db *gorm.DB, store domainrepo.RecordStore) *PostgresLedger {
	return &PostgresLedger{db: db, store: store}
}

func (l *PostgresLedger) ReserveOrFetch(ctx context.Context, key string, create domainrepo.IntentFactory) (*entity.PaymentIntent, bool, error) {
	if key == "" {
		intent, err := create(ctx)
		return intent, false, err
	}

	var intent *entity.PaymentIntent
	existing := false

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return apperr.NewAppError(apperr.ErrDownstreamRejected, "failed to lock idempotency key", err)
		}

		var row model.IdempotencyKey
		err := tx.First(&row, "key = ?", key).Error
		switch {
		case err == nil:
			existing = true
			fetched, ferr := l.store.GetIntent(ctx, row.IntentID)
			if ferr != nil {
				return ferr
			}
			intent = fetched
			return nil
		case apperr.Is(err, gorm.ErrRecordNotFound):
			created, cerr := create(ctx)
			if cerr != nil {
				return cerr
			}
			if ierr := tx.Create(&model.IdempotencyKey{Key: key, IntentID: created.ID}).Error; ierr != nil {
				return apperr.NewAppError(apperr.ErrDownstreamRejected, "failed to record idempotency key", ierr)
			}
			intent = created
			return nil
		default:
			return apperr.NewAppError(apperr.ErrDownstreamRejected, "failed to read idempotency key", err)
		}
	})
	if err != nil {
		return nil, existing, err
	}
	return intent, existing, nil
}
