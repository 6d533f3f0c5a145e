package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"posapi/internal/model"
	"posapi/internal/service"
)

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Deliver(ctx context.Context, req model.ReceiptRequest) (*model.DeliveryOutcome, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*model.DeliveryOutcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReceiptService) List(ctx context.Context, limit, offset int) (*service.DeliveryListResult, error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.(*service.DeliveryListResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReceiptService) Get(ctx context.Context, id string) (*model.Delivery, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Delivery), args.Error(1)
	}
	return nil, args.Error(1)
}
