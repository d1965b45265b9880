package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// Charge is the database row backing entity.Charge.
type Charge struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	IntentID      string          `gorm:"column:intent_id;size:36;index;not null" json:"intent_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Status        string          `gorm:"size:50;not null" json:"status"`
	FailureReason string          `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:now()" json:"updated_at"`
}

func (Charge) TableName() string {
	return "charges"
}

func (m *Charge) ToEntity() *entity.Charge {
	return &entity.Charge{
		ID:            m.ID,
		IntentID:      m.IntentID,
		Amount:        m.Amount,
		Status:        entity.ChargeStatus(m.Status),
		FailureReason: m.FailureReason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ChargeFromEntity(e *entity.Charge) *Charge {
	return &Charge{
		ID:            e.ID,
		IntentID:      e.IntentID,
		Amount:        e.Amount,
		Status:        string(e.Status),
		FailureReason: e.FailureReason,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
