package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent is the primary mutable record tracking a payment's lifecycle.
// ID is assigned once at creation and never changes; Status is the only field
// a lifecycle operation mutates.
type PaymentIntent struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        IntentStatus    `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Charge records money actually moved at capture time. Amount is copied from
// the originating intent and is immutable afterward.
type Charge struct {
	ID            string          `json:"id"`
	IntentID      string          `json:"intent_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        ChargeStatus    `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type IntentStatus string

const (
	IntentStatusRequiresConfirmation IntentStatus = "requires_confirmation"
	IntentStatusAuthorized           IntentStatus = "authorized"
	IntentStatusCaptured             IntentStatus = "captured"
	IntentStatusRefunded             IntentStatus = "refunded"
	IntentStatusRefundFailed         IntentStatus = "refund_failed"
	IntentStatusCanceled             IntentStatus = "canceled"
)

type ChargeStatus string

const (
	ChargeStatusCaptured     ChargeStatus = "captured"
	ChargeStatusRefunded     ChargeStatus = "refunded"
	ChargeStatusRefundFailed ChargeStatus = "refund_failed"
)

// Clone returns a copy so callers can hand entities across goroutines without
// sharing the underlying struct.
func (p *PaymentIntent) Clone() *PaymentIntent {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (c *Charge) Clone() *Charge {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
