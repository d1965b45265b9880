package repository

import (
	"context"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// IntentFactory creates the intent reserved under an idempotency key. It runs
// at most once per distinct key for the key's lifetime.
type IntentFactory func(ctx context.Context) (*entity.PaymentIntent, error)

// IdempotencyLedger maps caller-supplied idempotency keys to the intent they
// created. An empty key opts out: the factory always runs. A recorded key
// returns the original intent and never runs the factory again, whatever the
// retried payload says. Implementations must guarantee at-most-one intent per
// key under concurrent calls.
type IdempotencyLedger interface {
	ReserveOrFetch(ctx context.Context, key string, create IntentFactory) (intent *entity.PaymentIntent, existing bool, err error)
}
