package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"estampa-fina/internal/postal"
)

// MockPostalLookup is a mock implementation of postal.Lookup.
type MockPostalLookup struct {
	mock.Mock
}

func (m *MockPostalLookup) Lookup(ctx context.Context, cep string) (*postal.Address, error) {
	args := m.Called(ctx, cep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*postal.Address), args.Error(1)
}
