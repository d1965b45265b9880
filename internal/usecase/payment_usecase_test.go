package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adapterrepo "github.com/ledgerline/payment-orchestrator/internal/adapter/repository"
	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/gateway"
	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

type fixture struct {
	store   *adapterrepo.MemoryStore
	refunds *usecase.RefundOrchestrator
	uc      *usecase.PaymentUsecase
}

func newFixture(t *testing.T, syncResolve bool) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := adapterrepo.NewMemoryStore()
	ledger := adapterrepo.NewMemoryLedger(store)
	refunds := usecase.NewRefundOrchestrator(store, store, gateway.Simulated(), logger)
	t.Cleanup(refunds.Wait)
	return &fixture{
		store:   store,
		refunds: refunds,
		uc:      usecase.NewPaymentUsecase(store, ledger, refunds, logger, syncResolve),
	}
}

func createInput(amount int64) usecase.CreateIntentInput {
	return usecase.CreateIntentInput{
		OrderID:  "order-1",
		Amount:   decimal.NewFromInt(amount),
		Currency: "INR",
	}
}

func TestCreateIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending intent with defaults", func(t *testing.T) {
		f := newFixture(t, false)

		intent, err := f.uc.CreateIntent(ctx, usecase.CreateIntentInput{
			OrderID: "order-1",
			Amount:  decimal.NewFromInt(100),
		}, "")

		require.NoError(t, err)
		assert.NotEmpty(t, intent.ID)
		assert.Equal(t, entity.IntentStatusRequiresConfirmation, intent.Status)
		assert.Equal(t, "INR", intent.Currency)
		assert.True(t, intent.Amount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("missing order id is invalid input", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.uc.CreateIntent(ctx, usecase.CreateIntentInput{Amount: decimal.NewFromInt(100)}, "")

		require.Error(t, err)
		assert.Equal(t, apperr.ErrInvalidInput, apperr.CodeOf(err))
	})

	t.Run("negative amount is invalid input", func(t *testing.T) {
		f := newFixture(t, false)

		_, err := f.uc.CreateIntent(ctx, createInput(-1), "")

		require.Error(t, err)
		assert.Equal(t, apperr.ErrInvalidInput, apperr.CodeOf(err))
	})

	t.Run("sync resolve advances fresh intents to authorized", func(t *testing.T) {
		f := newFixture(t, true)

		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")

		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusAuthorized, intent.Status)
	})

	t.Run("replay with different payload returns the original entity", func(t *testing.T) {
		f := newFixture(t, false)

		first, err := f.uc.CreateIntent(ctx, createInput(100), "K1")
		require.NoError(t, err)

		second, err := f.uc.CreateIntent(ctx, usecase.CreateIntentInput{
			OrderID:  "another-order",
			Amount:   decimal.NewFromInt(999),
			Currency: "USD",
		}, "K1")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.True(t, second.Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "order-1", second.OrderID)

		all, err := f.store.ListIntents(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("replay bypasses validation of the replayed payload", func(t *testing.T) {
		f := newFixture(t, false)

		first, err := f.uc.CreateIntent(ctx, createInput(100), "K1")
		require.NoError(t, err)

		// A garbage retry of the same key still returns the original.
		second, err := f.uc.CreateIntent(ctx, usecase.CreateIntentInput{Amount: decimal.NewFromInt(-1)}, "K1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("concurrent creates with one key allocate one intent", func(t *testing.T) {
		f := newFixture(t, false)

		const workers = 10
		ids := make([]string, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				intent, err := f.uc.CreateIntent(ctx, createInput(100), "K1")
				if assert.NoError(t, err) {
					ids[i] = intent.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		all, err := f.store.ListIntents(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestConfirmIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("pending intent becomes authorized", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)

		confirmed, err := f.uc.ConfirmIntent(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusAuthorized, confirmed.Status)
	})

	t.Run("confirming an authorized intent is a no-op", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)
		_, err = f.uc.ConfirmIntent(ctx, intent.ID)
		require.NoError(t, err)

		again, err := f.uc.ConfirmIntent(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusAuthorized, again.Status)
	})

	t.Run("unknown intent is not found", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.ConfirmIntent(ctx, "missing")
		require.Error(t, err)
		assert.Equal(t, apperr.ErrNotFound, apperr.CodeOf(err))
	})
}

func TestCaptureIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("authorized intent captures into a charge", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)
		_, err = f.uc.ConfirmIntent(ctx, intent.ID)
		require.NoError(t, err)

		charge, err := f.uc.CaptureIntent(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.ID, charge.IntentID)
		assert.True(t, charge.Amount.Equal(intent.Amount))
		assert.Equal(t, entity.ChargeStatusCaptured, charge.Status)

		updated, err := f.uc.GetPayment(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusCaptured, updated.Status)
	})

	t.Run("capturing twice is always a conflict", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)
		_, err = f.uc.ConfirmIntent(ctx, intent.ID)
		require.NoError(t, err)
		_, err = f.uc.CaptureIntent(ctx, intent.ID)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = f.uc.CaptureIntent(ctx, intent.ID)
			require.Error(t, err)
			assert.Equal(t, apperr.ErrConflict, apperr.CodeOf(err))
		}
	})

	t.Run("capturing a pending intent is a conflict", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)

		_, err = f.uc.CaptureIntent(ctx, intent.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.ErrConflict, apperr.CodeOf(err))
	})
}

func TestRefundFlows(t *testing.T) {
	ctx := context.Background()

	capture := func(t *testing.T, f *fixture, amount int64) (*entity.PaymentIntent, *entity.Charge) {
		t.Helper()
		intent, err := f.uc.CreateIntent(ctx, createInput(amount), "")
		require.NoError(t, err)
		_, err = f.uc.ConfirmIntent(ctx, intent.ID)
		require.NoError(t, err)
		charge, err := f.uc.CaptureIntent(ctx, intent.ID)
		require.NoError(t, err)
		return intent, charge
	}

	t.Run("full lifecycle ends refunded", func(t *testing.T) {
		f := newFixture(t, false)
		_, charge := capture(t, f, 100)

		refunded, err := f.uc.RefundCharge(ctx, charge.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ChargeStatusRefunded, refunded.Status)
	})

	t.Run("refund by intent id ends refunded", func(t *testing.T) {
		f := newFixture(t, false)
		intent, _ := capture(t, f, 100)

		refunded, err := f.uc.RefundPayment(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefunded, refunded.Status)
	})

	t.Run("non-positive amount ends refund_failed with reason", func(t *testing.T) {
		f := newFixture(t, false)
		intent, _ := capture(t, f, 0)

		result, err := f.uc.RefundPayment(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefundFailed, result.Status)
		assert.Equal(t, "invalid amount for refund", result.FailureReason)

		// The store reflects the failure; the intent is not left captured.
		stored, err := f.uc.GetPayment(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusRefundFailed, stored.Status)
	})

	t.Run("refunding an already refunded charge replays unchanged", func(t *testing.T) {
		f := newFixture(t, false)
		_, charge := capture(t, f, 100)

		first, err := f.uc.RefundCharge(ctx, charge.ID)
		require.NoError(t, err)
		second, err := f.uc.RefundCharge(ctx, charge.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	})

	t.Run("refunding an unknown charge is not found", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.RefundCharge(ctx, "missing")
		require.Error(t, err)
		assert.Equal(t, apperr.ErrNotFound, apperr.CodeOf(err))
	})
}

func TestUpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("full update replaces fields", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)

		updated, err := f.uc.UpdatePayment(ctx, intent.ID, usecase.UpdatePaymentInput{
			OrderID:  "order-2",
			Amount:   decimal.NewFromInt(250),
			Currency: "USD",
		})
		require.NoError(t, err)
		assert.Equal(t, "order-2", updated.OrderID)
		assert.True(t, updated.Amount.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, "USD", updated.Currency)
		assert.Equal(t, entity.IntentStatusRequiresConfirmation, updated.Status)
	})

	t.Run("status change must follow the transition graph", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)

		_, err = f.uc.UpdatePayment(ctx, intent.ID, usecase.UpdatePaymentInput{
			OrderID: intent.OrderID,
			Amount:  intent.Amount,
			Status:  string(entity.IntentStatusRefunded),
		})
		require.Error(t, err)
		assert.Equal(t, apperr.ErrConflict, apperr.CodeOf(err))

		updated, err := f.uc.UpdatePayment(ctx, intent.ID, usecase.UpdatePaymentInput{
			OrderID: intent.OrderID,
			Amount:  intent.Amount,
			Status:  string(entity.IntentStatusCanceled),
		})
		require.NoError(t, err)
		assert.Equal(t, entity.IntentStatusCanceled, updated.Status)
	})

	t.Run("unknown status is invalid input", func(t *testing.T) {
		f := newFixture(t, false)
		intent, err := f.uc.CreateIntent(ctx, createInput(100), "")
		require.NoError(t, err)

		_, err = f.uc.UpdatePayment(ctx, intent.ID, usecase.UpdatePaymentInput{
			OrderID: intent.OrderID,
			Amount:  intent.Amount,
			Status:  "sideways",
		})
		require.Error(t, err)
		assert.Equal(t, apperr.ErrInvalidInput, apperr.CodeOf(err))
	})

	t.Run("update of a missing payment is not found", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.uc.UpdatePayment(ctx, "missing", usecase.UpdatePaymentInput{
			OrderID: "order-1",
			Amount:  decimal.NewFromInt(1),
		})
		require.Error(t, err)
		assert.Equal(t, apperr.ErrNotFound, apperr.CodeOf(err))
	})
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	for i := 0; i < 3; i++ {
		_, err := f.uc.CreateIntent(ctx, createInput(int64(100+i)), "")
		require.NoError(t, err)
	}

	payments, err := f.uc.ListPayments(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, payments, 3)

	page, err := f.uc.ListPayments(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
