package repository

import (
	"context"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// RecordStore is the narrow interface to the persistence boundary. Every
// implementation translates its own failures into the domain error taxonomy;
// nothing transport-specific crosses this line beyond the message string.
type RecordStore interface {
	GetIntent(ctx context.Context, id string) (*entity.PaymentIntent, error)
	CreateIntent(ctx context.Context, intent *entity.PaymentIntent) (*entity.PaymentIntent, error)
	UpdateIntent(ctx context.Context, id string, intent *entity.PaymentIntent) (*entity.PaymentIntent, error)
	ListIntents(ctx context.Context, limit, offset int) ([]*entity.PaymentIntent, error)

	GetCharge(ctx context.Context, id string) (*entity.Charge, error)
	CreateCharge(ctx context.Context, charge *entity.Charge) (*entity.Charge, error)
	UpdateCharge(ctx context.Context, id string, charge *entity.Charge) (*entity.Charge, error)
}
