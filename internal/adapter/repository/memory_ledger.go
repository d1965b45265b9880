package repository

import (
	"context"
	"sync"

	domainrepo "github.com/ledgerline/payment-orchestrator/internal/domain/repository"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// MemoryLedger records idempotency keys in a map. The mutex spans the
// check, the factory call, and the insert, so two concurrent creates with the
// same key can never both run the factory.
type MemoryLedger struct {
	mu    sync.Mutex
	keys  map[string]string
	store domainrepo.RecordStore
}

func NewMemoryLedger(store domainrepo.RecordStore) *MemoryLedger {
	return &MemoryLedger{
		keys:  make(map[string]string),
		store: store,
	}
}

func (l *MemoryLedger) ReserveOrFetch(ctx context.Context, key string, create domainrepo.IntentFactory) (*entity.PaymentIntent, bool, error) {
	if key == "" {
		intent, err := create(ctx)
		return intent, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.keys[key]; ok {
		intent, err := l.store.GetIntent(ctx, id)
		if err != nil {
			return nil, true, err
		}
		return intent, true, nil
	}

	intent, err := create(ctx)
	if err != nil {
		return nil, false, err
	}
	l.keys[key] = intent.ID
	return intent, false, nil
}
