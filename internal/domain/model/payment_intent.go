package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// PaymentIntent is the database row backing entity.PaymentIntent.
type PaymentIntent struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID       string          `gorm:"column:order_id;size:100;index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Currency      string          `gorm:"size:8" json:"currency"`
	Status        string          `gorm:"size:50;not null;index" json:"status"`
	FailureReason string          `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:now()" json:"updated_at"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}

func (m *PaymentIntent) ToEntity() *entity.PaymentIntent {
	return &entity.PaymentIntent{
		ID:            m.ID,
		OrderID:       m.OrderID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Status:        entity.IntentStatus(m.Status),
		FailureReason: m.FailureReason,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func IntentFromEntity(e *entity.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:            e.ID,
		OrderID:       e.OrderID,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Status:        string(e.Status),
		FailureReason: e.FailureReason,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
