package repository

import (
	"context"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// OrderAnnotator exposes the order-side surface used by the best-effort
// refund annotation: the dedicated refund-metadata call plus the raw order
// read/write pair the fallback merge needs.
type OrderAnnotator interface {
	PutRefundMetadata(ctx context.Context, orderID string, meta entity.RefundMetadata) error
	GetOrder(ctx context.Context, id string) (map[string]interface{}, error)
	UpdateOrder(ctx context.Context, id string, record map[string]interface{}) error
}
