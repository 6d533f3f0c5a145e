package mocks

import (
	"github.com/stretchr/testify/mock"

	"posapi/internal/model"
)

type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(req model.ReceiptRequest) (*model.ReceiptDocument, error) {
	args := m.Called(req)
	if v := args.Get(0); v != nil {
		return v.(*model.ReceiptDocument), args.Error(1)
	}
	return nil, args.Error(1)
}
