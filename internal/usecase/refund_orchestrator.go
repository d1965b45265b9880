package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/gateway"
	"github.com/ledgerline/payment-orchestrator/internal/domain/lifecycle"
	domainrepo "github.com/ledgerline/payment-orchestrator/internal/domain/repository"
)

const defaultAnnotationTimeout = 5 * time.Second

// RefundOrchestrator drives the refund transition: decide, persist, then
// fire the best-effort order annotation. The annotation runs on its own
// goroutine with its own deadline and returns nothing; its outcome cannot
// reach the caller's response by construction.
type RefundOrchestrator struct {
	store             domainrepo.RecordStore
	annotator         domainrepo.OrderAnnotator
	decider           gateway.Decider
	logger            *zap.Logger
	annotationTimeout time.Duration

	wg sync.WaitGroup
}

func NewRefundOrchestrator(
	store domainrepo.RecordStore,
	annotator domainrepo.OrderAnnotator,
	decider gateway.Decider,
	logger *zap.Logger,
) *RefundOrchestrator {
	return &RefundOrchestrator{
		store:             store,
		annotator:         annotator,
		decider:           decider,
		logger:            logger,
		annotationTimeout: defaultAnnotationTimeout,
	}
}

// Wait blocks until in-flight annotations finish. Called on shutdown.
func (o *RefundOrchestrator) Wait() {
	o.wg.Wait()
}

// RefundIntent refunds a payment addressed by its intent id. A store failure
// while saving the decided outcome is remapped to REFUND_PERSISTENCE_FAILED:
// the refund was computed but not saved, and the caller should retry the
// refund call rather than treat the request as invalid.
func (o *RefundOrchestrator) RefundIntent(ctx context.Context, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	result, err := lifecycle.RefundIntent(ctx, intent, o.decider)
	if err != nil {
		return nil, err
	}
	if !result.Transitioned {
		return intent, nil
	}

	updated, err := o.store.UpdateIntent(ctx, intent.ID, result.Intent)
	if err != nil {
		return nil, remapRefundPersistence(err)
	}

	o.spawnAnnotation(updated.OrderID, entity.RefundMetadata{
		PaymentID:  updated.ID,
		Status:     string(updated.Status),
		Amount:     updated.Amount,
		Reason:     updated.FailureReason,
		RefundedAt: updated.UpdatedAt,
	})
	return updated, nil
}

// RefundCharge is the charge-addressed variant. The originating intent is
// looked up only to find the order to annotate; that lookup is itself part of
// the best-effort path.
func (o *RefundOrchestrator) RefundCharge(ctx context.Context, charge *entity.Charge) (*entity.Charge, error) {
	result, err := lifecycle.RefundCharge(ctx, charge, o.decider)
	if err != nil {
		return nil, err
	}
	if !result.Transitioned {
		return charge, nil
	}

	updated, err := o.store.UpdateCharge(ctx, charge.ID, result.Charge)
	if err != nil {
		return nil, remapRefundPersistence(err)
	}

	meta := entity.RefundMetadata{
		PaymentID:  updated.IntentID,
		ChargeID:   updated.ID,
		Status:     string(updated.Status),
		Amount:     updated.Amount,
		Reason:     updated.FailureReason,
		RefundedAt: updated.UpdatedAt,
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), o.annotationTimeout)
		defer cancel()

		intent, err := o.store.GetIntent(ctx, updated.IntentID)
		if err != nil {
			o.logger.Warn("skipping refund annotation, originating intent unavailable",
				zap.String("charge_id", updated.ID),
				zap.String("intent_id", updated.IntentID),
				zap.Error(err))
			return
		}
		o.annotate(ctx, intent.OrderID, meta)
	}()
	return updated, nil
}

func (o *RefundOrchestrator) spawnAnnotation(orderID string, meta entity.RefundMetadata) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), o.annotationTimeout)
		defer cancel()
		o.annotate(ctx, orderID, meta)
	}()
}

// annotate tries the dedicated refund-metadata call, then falls back to one
// read-modify-write of the full order record. Every failure here is logged
// and dropped; the refund already returned to the caller is authoritative and
// is never revisited for the sake of enriching an unrelated record.
func (o *RefundOrchestrator) annotate(ctx context.Context, orderID string, meta entity.RefundMetadata) {
	if orderID == "" {
		return
	}

	err := o.annotator.PutRefundMetadata(ctx, orderID, meta)
	if err == nil {
		return
	}
	o.logger.Warn("refund metadata call failed, falling back to order merge",
		zap.String("order_id", orderID),
		zap.Error(err))

	order, err := o.annotator.GetOrder(ctx, orderID)
	if err != nil {
		o.logger.Warn("refund annotation dropped, order unavailable",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}

	order["refund_status"] = meta.Status
	order["refund_amount"] = meta.Amount.String()
	order["refunded_at"] = meta.RefundedAt
	order["payment_id"] = meta.PaymentID
	if meta.ChargeID != "" {
		order["charge_id"] = meta.ChargeID
	}
	if meta.Reason != "" {
		order["refund_reason"] = meta.Reason
	}

	if err := o.annotator.UpdateOrder(ctx, orderID, order); err != nil {
		o.logger.Warn("refund annotation dropped, order merge failed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

// remapRefundPersistence turns a downstream failure on the refund write into
// REFUND_PERSISTENCE_FAILED so callers can tell "decided but not saved" apart
// from an invalid refund request. Locally generated errors pass through.
func remapRefundPersistence(err error) error {
	switch apperr.CodeOf(err) {
	case apperr.ErrDownstreamTimeout, apperr.ErrDownstreamUnreachable, apperr.ErrDownstreamRejected:
		return apperr.NewAppError(apperr.ErrRefundPersistenceFailed,
			"refund decided but could not be saved, retry the refund", err)
	}
	return err
}
