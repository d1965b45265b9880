// Package lifecycle holds the payment state machine: the legal transition
// graph and the per-operation decision logic. Nothing here touches storage;
// callers persist whatever comes back.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	"github.com/ledgerline/payment-orchestrator/internal/domain/gateway"
)

// transitions lists the legal forward moves per status. Terminal statuses map
// to an empty slice. Statuses only ever move along this graph.
var transitions = map[entity.IntentStatus][]entity.IntentStatus{
	entity.IntentStatusRequiresConfirmation: {
		entity.IntentStatusAuthorized,
		entity.IntentStatusCanceled,
	},
	entity.IntentStatusAuthorized: {
		entity.IntentStatusCaptured,
		entity.IntentStatusCanceled,
	},
	entity.IntentStatusCaptured: {
		entity.IntentStatusRefunded,
		entity.IntentStatusRefundFailed,
	},
	entity.IntentStatusRefundFailed: {
		entity.IntentStatusRefunded,
		entity.IntentStatusRefundFailed,
	},
	entity.IntentStatusRefunded: {},
	entity.IntentStatusCanceled: {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to entity.IntentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a Conflict error for an illegal move.
func ValidateTransition(from, to entity.IntentStatus) error {
	if !CanTransition(from, to) {
		return apperr.Conflict(fmt.Sprintf("illegal transition from %s to %s", from, to))
	}
	return nil
}

// IntentResult is the outcome of a lifecycle operation on an intent.
// Transitioned is false when the operation was a no-op replay.
type IntentResult struct {
	Intent       *entity.PaymentIntent
	Transitioned bool
}

// ChargeResult is the outcome of a lifecycle operation on a charge.
type ChargeResult struct {
	Charge       *entity.Charge
	Transitioned bool
}

// Confirm advances requires_confirmation to authorized. Every other status is
// treated as a retried request and returns the intent unchanged.
func Confirm(intent *entity.PaymentIntent) IntentResult {
	switch intent.Status {
	case entity.IntentStatusRequiresConfirmation:
		next := intent.Clone()
		next.Status = entity.IntentStatusAuthorized
		next.UpdatedAt = time.Now().UTC()
		return IntentResult{Intent: next, Transitioned: true}
	case entity.IntentStatusAuthorized,
		entity.IntentStatusCaptured,
		entity.IntentStatusRefunded,
		entity.IntentStatusRefundFailed,
		entity.IntentStatusCanceled:
		return IntentResult{Intent: intent, Transitioned: false}
	}
	return IntentResult{Intent: intent, Transitioned: false}
}

// Capture moves an authorized intent to captured and derives the charge that
// records the moved amount. Capture has an external side effect, so any other
// status is a Conflict rather than a silent replay: the caller must read the
// current state and decide for itself.
func Capture(intent *entity.PaymentIntent, chargeID string) (IntentResult, *entity.Charge, error) {
	if intent.Status != entity.IntentStatusAuthorized {
		return IntentResult{}, nil, apperr.Conflict(
			fmt.Sprintf("intent %s is %s, not authorized", intent.ID, intent.Status))
	}

	now := time.Now().UTC()
	next := intent.Clone()
	next.Status = entity.IntentStatusCaptured
	next.UpdatedAt = now

	charge := &entity.Charge{
		ID:        chargeID,
		IntentID:  intent.ID,
		Amount:    intent.Amount,
		Status:    entity.ChargeStatusCaptured,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return IntentResult{Intent: next, Transitioned: true}, charge, nil
}

// RefundIntent drives the refund decision for a payment addressed by its
// intent. Already-refunded and canceled intents replay unchanged with no new
// decision. A declined or faulted decision lands in refund_failed with the
// original reason retained, so the intent is never silently left as captured.
func RefundIntent(ctx context.Context, intent *entity.PaymentIntent, decider gateway.Decider) (IntentResult, error) {
	switch intent.Status {
	case entity.IntentStatusRefunded, entity.IntentStatusCanceled:
		return IntentResult{Intent: intent, Transitioned: false}, nil
	case entity.IntentStatusCaptured, entity.IntentStatusRefundFailed:
		next := intent.Clone()
		next.UpdatedAt = time.Now().UTC()
		if err := decider.DecideRefund(ctx, intent.Amount); err != nil {
			next.Status = entity.IntentStatusRefundFailed
			next.FailureReason = err.Error()
		} else {
			next.Status = entity.IntentStatusRefunded
			next.FailureReason = ""
		}
		return IntentResult{Intent: next, Transitioned: true}, nil
	case entity.IntentStatusRequiresConfirmation, entity.IntentStatusAuthorized:
		return IntentResult{}, apperr.Conflict(
			fmt.Sprintf("intent %s is %s, nothing captured to refund", intent.ID, intent.Status))
	}
	return IntentResult{}, apperr.Conflict(
		fmt.Sprintf("intent %s has unknown status %s", intent.ID, intent.Status))
}

// RefundCharge is the charge-addressed variant of RefundIntent.
func RefundCharge(ctx context.Context, charge *entity.Charge, decider gateway.Decider) (ChargeResult, error) {
	switch charge.Status {
	case entity.ChargeStatusRefunded:
		return ChargeResult{Charge: charge, Transitioned: false}, nil
	case entity.ChargeStatusCaptured, entity.ChargeStatusRefundFailed:
		next := charge.Clone()
		next.UpdatedAt = time.Now().UTC()
		if err := decider.DecideRefund(ctx, charge.Amount); err != nil {
			next.Status = entity.ChargeStatusRefundFailed
			next.FailureReason = err.Error()
		} else {
			next.Status = entity.ChargeStatusRefunded
			next.FailureReason = ""
		}
		return ChargeResult{Charge: next, Transitioned: true}, nil
	}
	return ChargeResult{}, apperr.Conflict(
		fmt.Sprintf("charge %s has unknown status %s", charge.ID, charge.Status))
}
