package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is the simulated decline reason for non-positive amounts.
var ErrInvalidAmount = errors.New("invalid amount for refund")

// Decider is the refund success predicate. A nil return approves the refund.
// A real payment-gateway integration replaces this without touching the
// transition logic around it.
type Decider interface {
	DecideRefund(ctx context.Context, amount decimal.Decimal) error
}

// DeciderFunc adapts a plain function to the Decider interface.
type DeciderFunc func(ctx context.Context, amount decimal.Decimal) error

func (f DeciderFunc) DecideRefund(ctx context.Context, amount decimal.Decimal) error {
	return f(ctx, amount)
}

// Simulated approves any strictly positive amount and declines the rest.
func Simulated() Decider {
	return DeciderFunc(func(_ context.Context, amount decimal.Decimal) error {
		if amount.IsPositive() {
			return nil
		}
		return ErrInvalidAmount
	})
}
