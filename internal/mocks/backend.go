package mocks

import (
	"context"

	"github.com/brettbedarf/explorerfs"
	"github.com/stretchr/testify/mock"
)

// MockBackend implements explorerfs.ListingBackend for testing across packages
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListDirectory(ctx context.Context, path string) ([]explorerfs.Entry, error) {
	args := m.Called(ctx, path)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(context.Context, string) []explorerfs.Entry); ok {
		return fn(ctx, path), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]explorerfs.Entry), args.Error(1)
}

var _ explorerfs.ListingBackend = (*MockBackend)(nil)

// MockBackendProvider implements explorerfs.BackendProvider for testing across packages
type MockBackendProvider struct {
	mock.Mock
}

func (m *MockBackendProvider) Backend() (explorerfs.ListingBackend, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(explorerfs.ListingBackend), args.Error(1)
}

var _ explorerfs.BackendProvider = (*MockBackendProvider)(nil)
