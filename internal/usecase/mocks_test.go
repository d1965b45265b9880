package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
)

// MockRecordStore is a mock implementation of repository.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) GetIntent(ctx context.Context, id string) (*entity.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentIntent), args.Error(1)
}

func (m *MockRecordStore) CreateIntent(ctx context.Context, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentIntent), args.Error(1)
}

func (m *MockRecordStore) UpdateIntent(ctx context.Context, id string, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	args := m.Called(ctx, id, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentIntent), args.Error(1)
}

func (m *MockRecordStore) ListIntents(ctx context.Context, limit, offset int) ([]*entity.PaymentIntent, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PaymentIntent), args.Error(1)
}

func (m *MockRecordStore) GetCharge(ctx context.Context, id string) (*entity.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Charge), args.Error(1)
}

func (m *MockRecordStore) CreateCharge(ctx context.Context, charge *entity.Charge) (*entity.Charge, error) {
	args := m.Called(ctx, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Charge), args.Error(1)
}

func (m *MockRecordStore) UpdateCharge(ctx context.Context, id string, charge *entity.Charge) (*entity.Charge, error) {
	args := m.Called(ctx, id, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Charge), args.Error(1)
}

// MockAnnotator is a mock implementation of repository.OrderAnnotator.
type MockAnnotator struct {
	mock.Mock
}

func (m *MockAnnotator) PutRefundMetadata(ctx context.Context, orderID string, meta entity.RefundMetadata) error {
	args := m.Called(ctx, orderID, meta)
	return args.Error(0)
}

func (m *MockAnnotator) GetOrder(ctx context.Context, id string) (map[string]interface{}, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockAnnotator) UpdateOrder(ctx context.Context, id string, record map[string]interface{}) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}
