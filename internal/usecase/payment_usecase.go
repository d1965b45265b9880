package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/lifecycle"
	domainrepo "github.com/ledgerline/payment-orchestrator/internal/domain/repository"
)

const defaultCurrency = "INR"

// PaymentUsecase composes the ledger, state machine, store and refund
// orchestrator into the operations callers invoke. Store errors pass through
// untouched except where an operation's contract remaps them.
type PaymentUsecase struct {
	store       domainrepo.RecordStore
	ledger      domainrepo.IdempotencyLedger
	refunds     *RefundOrchestrator
	locks       *keyedMutex
	logger      *zap.Logger
	syncResolve bool
}

func NewPaymentUsecase(
	store domainrepo.RecordStore,
	ledger domainrepo.IdempotencyLedger,
	refunds *RefundOrchestrator,
	logger *zap.Logger,
	syncResolve bool,
) *PaymentUsecase {
	return &PaymentUsecase{
		store:       store,
		ledger:      ledger,
		refunds:     refunds,
		locks:       newKeyedMutex(),
		logger:      logger,
		syncResolve: syncResolve,
	}
}

// CreateIntentInput is the structural input for intent creation. Amount has
// already been parsed by the transport layer.
type CreateIntentInput struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
}

// CreateIntent creates a payment intent, deduplicated by the caller's
// idempotency key. The key lookup happens before payload validation: a
// replayed create returns the original intent whatever the retried payload
// says, since the original payload already passed validation.
func (u *PaymentUsecase) CreateIntent(ctx context.Context, input CreateIntentInput, idempotencyKey string) (*entity.PaymentIntent, error) {
	intent, existing, err := u.ledger.ReserveOrFetch(ctx, idempotencyKey, func(ctx context.Context) (*entity.PaymentIntent, error) {
		return u.createIntent(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	if existing {
		u.logger.Info("idempotent create replayed",
			zap.String("idempotency_key", idempotencyKey),
			zap.String("intent_id", intent.ID))
	}
	return intent, nil
}

func (u *PaymentUsecase) createIntent(ctx context.Context, input CreateIntentInput) (*entity.PaymentIntent, error) {
	if input.OrderID == "" {
		return nil, apperr.InvalidInput("order_id is required")
	}
	if input.Amount.IsNegative() {
		return nil, apperr.InvalidInput("amount must be non-negative")
	}
	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now().UTC()
	intent := &entity.PaymentIntent{
		ID:        uuid.NewString(),
		OrderID:   input.OrderID,
		Amount:    input.Amount,
		Currency:  currency,
		Status:    entity.IntentStatusRequiresConfirmation,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := u.store.CreateIntent(ctx, intent)
	if err != nil {
		return nil, err
	}
	u.logger.Info("payment intent created",
		zap.String("intent_id", created.ID),
		zap.String("order_id", created.OrderID),
		zap.String("amount", created.Amount.String()),
		zap.String("currency", created.Currency))

	if !u.syncResolve {
		return created, nil
	}

	// Sync-resolve deployments advance fresh intents in-process instead of
	// leaving them for an external workflow.
	result := lifecycle.Confirm(created)
	if !result.Transitioned {
		return created, nil
	}
	resolved, err := u.store.UpdateIntent(ctx, created.ID, result.Intent)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// ConfirmIntent advances an intent to authorized. Confirming an intent in any
// other state returns it unchanged; a retried confirm is indistinguishable
// from a duplicate and must not error.
func (u *PaymentUsecase) ConfirmIntent(ctx context.Context, id string) (*entity.PaymentIntent, error) {
	unlock := u.locks.Lock("intent:" + id)
	defer unlock()

	intent, err := u.store.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}

	result := lifecycle.Confirm(intent)
	if !result.Transitioned {
		return intent, nil
	}

	updated, err := u.store.UpdateIntent(ctx, id, result.Intent)
	if err != nil {
		return nil, err
	}
	u.logger.Info("payment intent authorized", zap.String("intent_id", id))
	return updated, nil
}

// CaptureIntent captures an authorized intent and returns the charge created
// for the moved amount. Capture is deliberately not replay-safe: charging
// twice must never happen silently, so any state but authorized is a
// Conflict.
func (u *PaymentUsecase) CaptureIntent(ctx context.Context, id string) (*entity.Charge, error) {
	unlock := u.locks.Lock("intent:" + id)
	defer unlock()

	intent, err := u.store.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}

	result, charge, err := lifecycle.Capture(intent, uuid.NewString())
	if err != nil {
		return nil, err
	}

	created, err := u.store.CreateCharge(ctx, charge)
	if err != nil {
		return nil, err
	}
	if _, err := u.store.UpdateIntent(ctx, id, result.Intent); err != nil {
		return nil, err
	}

	u.logger.Info("payment intent captured",
		zap.String("intent_id", id),
		zap.String("charge_id", created.ID),
		zap.String("amount", created.Amount.String()))
	return created, nil
}

// RefundCharge refunds the payment addressed by its charge.
func (u *PaymentUsecase) RefundCharge(ctx context.Context, chargeID string) (*entity.Charge, error) {
	unlock := u.locks.Lock("charge:" + chargeID)
	defer unlock()

	charge, err := u.store.GetCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	return u.refunds.RefundCharge(ctx, charge)
}

// RefundPayment refunds the payment addressed by its intent.
func (u *PaymentUsecase) RefundPayment(ctx context.Context, intentID string) (*entity.PaymentIntent, error) {
	unlock := u.locks.Lock("intent:" + intentID)
	defer unlock()

	intent, err := u.store.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	return u.refunds.RefundIntent(ctx, intent)
}

func (u *PaymentUsecase) GetPayment(ctx context.Context, id string) (*entity.PaymentIntent, error) {
	if id == "" {
		return nil, apperr.InvalidInput("payment id is required")
	}
	return u.store.GetIntent(ctx, id)
}

// UpdatePaymentInput is a full replacement of the mutable fields.
type UpdatePaymentInput struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	Status   string
}

// UpdatePayment fully replaces a payment record. A status change must still
// follow the transition graph; the update surface is not a bypass.
func (u *PaymentUsecase) UpdatePayment(ctx context.Context, id string, input UpdatePaymentInput) (*entity.PaymentIntent, error) {
	unlock := u.locks.Lock("intent:" + id)
	defer unlock()

	intent, err := u.store.GetIntent(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.OrderID == "" {
		return nil, apperr.InvalidInput("order_id is required")
	}
	if input.Amount.IsNegative() {
		return nil, apperr.InvalidInput("amount must be non-negative")
	}

	next := intent.Clone()
	next.OrderID = input.OrderID
	next.Amount = input.Amount
	if input.Currency != "" {
		next.Currency = input.Currency
	}

	if input.Status != "" {
		status, ok := parseIntentStatus(input.Status)
		if !ok {
			return nil, apperr.InvalidInput(fmt.Sprintf("unknown status %q", input.Status))
		}
		if status != intent.Status {
			if err := lifecycle.ValidateTransition(intent.Status, status); err != nil {
				return nil, err
			}
			next.Status = status
		}
	}
	next.UpdatedAt = time.Now().UTC()

	return u.store.UpdateIntent(ctx, id, next)
}

func (u *PaymentUsecase) ListPayments(ctx context.Context, limit, offset int) ([]*entity.PaymentIntent, error) {
	if limit < 1 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return u.store.ListIntents(ctx, limit, offset)
}

func parseIntentStatus(s string) (entity.IntentStatus, bool) {
	switch status := entity.IntentStatus(s); status {
	case entity.IntentStatusRequiresConfirmation,
		entity.IntentStatusAuthorized,
		entity.IntentStatusCaptured,
		entity.IntentStatusRefunded,
		entity.IntentStatusRefundFailed,
		entity.IntentStatusCanceled:
		return status, true
	}
	return "", false
}
