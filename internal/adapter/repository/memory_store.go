package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
)

// MemoryStore keeps all records in mutex-guarded maps. It backs local
// deployments and tests; the maps live for the process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	intents map[string]*entity.PaymentIntent
	charges map[string]*entity.Charge
	orders  map[string]map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		intents: make(map[string]*entity.PaymentIntent),
		charges: make(map[string]*entity.Charge),
		orders:  make(map[string]map[string]interface{}),
	}
}

func (s *MemoryStore) GetIntent(_ context.Context, id string) (*entity.PaymentIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	intent, ok := s.intents[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("intent %s not found", id))
	}
	return intent.Clone(), nil
}

func (s *MemoryStore) CreateIntent(_ context.Context, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.intents[intent.ID]; exists {
		return nil, apperr.Conflict(fmt.Sprintf("intent %s already exists", intent.ID))
	}
	s.intents[intent.ID] = intent.Clone()
	return intent.Clone(), nil
}

func (s *MemoryStore) UpdateIntent(_ context.Context, id string, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.intents[id]; !ok {
		return nil, apperr.NotFound(fmt.Sprintf("intent %s not found", id))
	}
	next := intent.Clone()
	next.ID = id
	s.intents[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) ListIntents(_ context.Context, limit, offset int) ([]*entity.PaymentIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*entity.PaymentIntent, 0, len(s.intents))
	for _, intent := range s.intents {
		all = append(all, intent.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*entity.PaymentIntent{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) GetCharge(_ context.Context, id string) (*entity.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	charge, ok := s.charges[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("charge %s not found", id))
	}
	return charge.Clone(), nil
}

func (s *MemoryStore) CreateCharge(_ context.Context, charge *entity.Charge) (*entity.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.charges[charge.ID]; exists {
		return nil, apperr.Conflict(fmt.Sprintf("charge %s already exists", charge.ID))
	}
	s.charges[charge.ID] = charge.Clone()
	return charge.Clone(), nil
}

func (s *MemoryStore) UpdateCharge(_ context.Context, id string, charge *entity.Charge) (*entity.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.charges[id]; !ok {
		return nil, apperr.NotFound(fmt.Sprintf("charge %s not found", id))
	}
	next := charge.Clone()
	next.ID = id
	s.charges[id] = next
	return next.Clone(), nil
}

// SeedOrder installs an order record so the annotation fallback has
// something to merge into. Used by local deployments and tests.
func (s *MemoryStore) SeedOrder(id string, record map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[id] = record
}

func (s *MemoryStore) PutRefundMetadata(_ context.Context, orderID string, meta entity.RefundMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("order %s not found", orderID))
	}
	order["refund_metadata"] = meta
	return nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("order %s not found", id))
	}
	out := make(map[string]interface{}, len(order))
	for k, v := range order {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, id string, record map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return apperr.NotFound(fmt.Sprintf("order %s not found", id))
	}
	s.orders[id] = record
	return nil
}
