package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/taskdesk/taskdesk-api/internal/cache"
)

// MockCacheGateway is a mock of cache.Gateway for use with testify/mock.
type MockCacheGateway struct {
	mock.Mock
}

var _ cache.Gateway = (*MockCacheGateway)(nil)

// Get is a mock implementation of cache.Gateway.Get
func (m *MockCacheGateway) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	var value []byte
	if v, ok := args.Get(0).([]byte); ok {
		value = v
	}
	return value, args.Bool(1), args.Error(2)
}

// Set is a mock implementation of cache.Gateway.Set
func (m *MockCacheGateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Invalidate is a mock implementation of cache.Gateway.Invalidate
func (m *MockCacheGateway) Invalidate(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// Ping is a mock implementation of cache.Gateway.Ping
func (m *MockCacheGateway) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
