package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/model"
)

// PostgresStore implements RecordStore on a transactional backing store for
// deployments that want durable payment state instead of the remote boundary.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostgresStore(db *gorm.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// translateDBError folds gorm failures into the domain taxonomy. The database
// plays the persistence-boundary role here, so its errors classify the same
// way a remote rejection would.
func translateDBError(err error, notFoundMsg string) error {
	if apperr.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	if apperr.Is(err, context.DeadlineExceeded) {
		return apperr.NewAppError(apperr.ErrDownstreamTimeout, "database call timed out", err)
	}
	return apperr.NewAppError(apperr.ErrDownstreamRejected, "database rejected the operation", err)
}

func (s *PostgresStore) GetIntent(ctx context.Context, id string) (*entity.PaymentIntent, error) {
	var row model.PaymentIntent
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateDBError(err, fmt.Sprintf("intent %s not found", id))
	}
	return row.ToEntity(), nil
}

func (s *PostgresStore) CreateIntent(ctx context.Context, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	row := model.IntentFromEntity(intent)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, translateDBError(err, "")
	}
	return row.ToEntity(), nil
}

func (s *PostgresStore) UpdateIntent(ctx context.Context, id string, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	row := model.IntentFromEntity(intent)
	row.ID = id

	result := s.db.WithContext(ctx).Model(&model.PaymentIntent{}).Where("id = ?", id).
		Select("order_id", "amount", "currency", "status", "failure_reason", "updated_at").
		Updates(row)
	if result.Error != nil {
		return nil, translateDBError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("intent %s not found", id))
	}
	return s.GetIntent(ctx, id)
}

func (s *PostgresStore) ListIntents(ctx context.Context, limit, offset int) ([]*entity.PaymentIntent, error) {
	var rows []model.PaymentIntent
	q := s.db.WithContext(ctx).Order("created_at asc, id asc").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateDBError(err, "")
	}

	intents := make([]*entity.PaymentIntent, 0, len(rows))
	for i := range rows {
		intents = append(intents, rows[i].ToEntity())
	}
	return intents, nil
}

func (s *PostgresStore) GetCharge(ctx context.Context, id string) (*entity.Charge, error) {
	var row model.Charge
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateDBError(err, fmt.Sprintf("charge %s not found", id))
	}
	return row.ToEntity(), nil
}

func (s *PostgresStore) CreateCharge(ctx context.Context, charge *entity.Charge) (*entity.Charge, error) {
	row := model.ChargeFromEntity(charge)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, translateDBError(err, "")
	}
	return row.ToEntity(), nil
}

func (s *PostgresStore) UpdateCharge(ctx context.Context, id string, charge *entity.Charge) (*entity.Charge, error) {
	row := model.ChargeFromEntity(charge)
	row.ID = id

	result := s.db.WithContext(ctx).Model(&model.Charge{}).Where("id = ?", id).
		Select("intent_id", "amount", "status", "failure_reason", "updated_at").
		Updates(row)
	if result.Error != nil {
		return nil, translateDBError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("charge %s not found", id))
	}
	return s.GetCharge(ctx, id)
}
