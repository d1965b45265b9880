package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundMetadata is the best-effort annotation merged onto the originating
// order after a refund. It is advisory only; the payment record stays
// authoritative.
type RefundMetadata struct {
	PaymentID  string          `json:"payment_id"`
	ChargeID   string          `json:"charge_id,omitempty"`
	Status     string          `json:"refund_status"`
	Amount     decimal.Decimal `json:"refund_amount"`
	Reason     string          `json:"refund_reason,omitempty"`
	RefundedAt time.Time       `json:"refunded_at"`
}
