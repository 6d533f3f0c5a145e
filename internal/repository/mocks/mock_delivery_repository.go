package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"posapi/internal/model"
	"posapi/internal/repository"
)

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(ctx context.Context, d *model.Delivery) (*model.Delivery, error) {
	args := m.Called(ctx, d)
	if v := args.Get(0); v != nil {
		return v.(*model.Delivery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeliveryRepository) FindByID(ctx context.Context, id string) (*model.Delivery, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Delivery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeliveryRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Delivery], error) {
	args := m.Called(ctx, pq)
	if v := args.Get(0); v != nil {
		return v.(*repository.PageResult[model.Delivery]), args.Error(1)
	}
	return nil, args.Error(1)
}
