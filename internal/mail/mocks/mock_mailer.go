package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"posapi/internal/model"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendReceipt(ctx context.Context, to string, doc *model.ReceiptDocument, req model.ReceiptRequest) error {
	args := m.Called(ctx, to, doc, req)
	return args.Error(0)
}
