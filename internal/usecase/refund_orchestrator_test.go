package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/gateway"
	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

func capturedIntent(amount int64) *entity.PaymentIntent {
	return &entity.PaymentIntent{
		ID:       "intent-1",
		OrderID:  "order-1",
		Amount:   decimal.NewFromInt(amount),
		Currency: "INR",
		Status:   entity.IntentStatusCaptured,
	}
}

func capturedCharge(amount int64) *entity.Charge {
	return &entity.Charge{
		ID:       "charge-1",
		IntentID: "intent-1",
		Amount:   decimal.NewFromInt(amount),
		Status:   entity.ChargeStatusCaptured,
	}
}

func TestRefundIntentPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("downstream failure on the refund write is remapped", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		timeout := apperr.NewAppError(apperr.ErrDownstreamTimeout, "persistence boundary call timed out", nil)
		store.On("UpdateIntent", ctx, "intent-1", mock.Anything).Return(nil, timeout)

		_, err := o.RefundIntent(ctx, capturedIntent(100))

		require.Error(t, err)
		assert.Equal(t, apperr.ErrRefundPersistenceFailed, apperr.CodeOf(err))
		// The decision was a success; only persistence failed. No annotation
		// may fire for an unsaved refund.
		annotator.AssertNotCalled(t, "PutRefundMetadata", mock.Anything, mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("locally generated errors pass through unmapped", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		notFound := apperr.NotFound("intent intent-1 not found")
		store.On("UpdateIntent", ctx, "intent-1", mock.Anything).Return(nil, notFound)

		_, err := o.RefundIntent(ctx, capturedIntent(100))

		require.Error(t, err)
		assert.Equal(t, apperr.ErrNotFound, apperr.CodeOf(err))
	})
}

func TestRefundAnnotationIsInvisible(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("dedicated call succeeds", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		intent := capturedIntent(100)
		refunded := intent.Clone()
		refunded.Status = entity.IntentStatusRefunded
		store.On("UpdateIntent", ctx, "intent-1", mock.Anything).Return(refunded, nil)
		annotator.On("PutRefundMetadata", mock.Anything, "order-1", mock.Anything).Return(nil)

		result, err := o.RefundIntent(ctx, intent)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefunded, result.Status)

		o.Wait()
		annotator.AssertExpectations(t)
		annotator.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
	})

	t.Run("falls back to order merge when the dedicated call fails", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		intent := capturedIntent(100)
		refunded := intent.Clone()
		refunded.Status = entity.IntentStatusRefunded
		store.On("UpdateIntent", ctx, "intent-1", mock.Anything).Return(refunded, nil)

		rejected := apperr.NewAppError(apperr.ErrDownstreamRejected, "persistence boundary returned 501", nil)
		annotator.On("PutRefundMetadata", mock.Anything, "order-1", mock.Anything).Return(rejected)
		annotator.On("GetOrder", mock.Anything, "order-1").Return(map[string]interface{}{"total": "100"}, nil)
		annotator.On("UpdateOrder", mock.Anything, "order-1", mock.MatchedBy(func(order map[string]interface{}) bool {
			return order["refund_status"] == "refunded" && order["payment_id"] == "intent-1"
		})).Return(nil)

		result, err := o.RefundIntent(ctx, intent)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefunded, result.Status)

		o.Wait()
		annotator.AssertExpectations(t)
	})

	t.Run("every annotation failure is swallowed", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		intent := capturedIntent(100)
		refunded := intent.Clone()
		refunded.Status = entity.IntentStatusRefunded
		store.On("UpdateIntent", ctx, "intent-1", mock.Anything).Return(refunded, nil)

		unreachable := apperr.NewAppError(apperr.ErrDownstreamUnreachable, "persistence boundary unreachable", nil)
		annotator.On("PutRefundMetadata", mock.Anything, "order-1", mock.Anything).Return(unreachable)
		annotator.On("GetOrder", mock.Anything, "order-1").Return(nil, unreachable)

		result, err := o.RefundIntent(ctx, intent)

		// Both annotation paths failed; the refund is still a success.
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefunded, result.Status)
		o.Wait()
	})

	t.Run("replayed refund never re-annotates", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		intent := capturedIntent(100)
		intent.Status = entity.IntentStatusRefunded

		result, err := o.RefundIntent(ctx, intent)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefunded, result.Status)

		o.Wait()
		store.AssertNotCalled(t, "UpdateIntent", mock.Anything, mock.Anything, mock.Anything)
		annotator.AssertNotCalled(t, "PutRefundMetadata", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRefundChargeOrchestration(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("annotation targets the originating intent's order", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		charge := capturedCharge(100)
		refunded := charge.Clone()
		refunded.Status = entity.ChargeStatusRefunded
		store.On("UpdateCharge", ctx, "charge-1", mock.Anything).Return(refunded, nil)
		store.On("GetIntent", mock.Anything, "intent-1").Return(capturedIntent(100), nil)
		annotator.On("PutRefundMetadata", mock.Anything, "order-1", mock.MatchedBy(func(meta entity.RefundMetadata) bool {
			return meta.ChargeID == "charge-1" && meta.Status == "refunded"
		})).Return(nil)

		result, err := o.RefundCharge(ctx, charge)
		require.NoError(t, err)
		assert.Equal(t, entity.ChargeStatusRefunded, result.Status)

		o.Wait()
		annotator.AssertExpectations(t)
	})

	t.Run("missing originating intent skips annotation silently", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		charge := capturedCharge(100)
		refunded := charge.Clone()
		refunded.Status = entity.ChargeStatusRefunded
		store.On("UpdateCharge", ctx, "charge-1", mock.Anything).Return(refunded, nil)
		store.On("GetIntent", mock.Anything, "intent-1").Return(nil, apperr.NotFound("intent intent-1 not found"))

		result, err := o.RefundCharge(ctx, charge)
		require.NoError(t, err)
		assert.Equal(t, entity.ChargeStatusRefunded, result.Status)

		o.Wait()
		annotator.AssertNotCalled(t, "PutRefundMetadata", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("charge refund write failure is remapped", func(t *testing.T) {
		store := new(MockRecordStore)
		annotator := new(MockAnnotator)
		o := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), logger)

		timeout := apperr.NewAppError(apperr.ErrDownstreamTimeout, "persistence boundary call timed out", nil)
		store.On("UpdateCharge", ctx, "charge-1", mock.Anything).Return(nil, timeout)

		_, err := o.RefundCharge(ctx, capturedCharge(100))

		require.Error(t, err)
		assert.Equal(t, apperr.ErrRefundPersistenceFailed, apperr.CodeOf(err))
	})
}
