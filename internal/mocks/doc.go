// Package mocks provides centralized mock implementations for testing.
//
// Most mocks expose Fn fields that override the default behavior of a
// method, plus call counters for verification. The stores keep working
// in-memory data so handler and pipeline tests can exercise full round
// trips without a database. MockCacheGateway is built on testify/mock for
// tests that assert exact call expectations.
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.ListFn = func(ctx context.Context, s *domain.TaskStatus) ([]domain.Task, error) {
//	    return nil, store.ErrUnavailable
//	}
package mocks
