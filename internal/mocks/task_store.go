package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// MockTaskStore implements store.TaskStore with an in-memory, ordered
// backing slice. Fn fields override individual methods.
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id string) (*domain.Task, error)
	ListFn    func(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error)
	UpdateFn  func(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn  func(ctx context.Context, id string) error
	PingFn    func(ctx context.Context) error

	// Call counters
	CreateCalls atomic.Int64
	GetCalls    atomic.Int64
	ListCalls   atomic.Int64
	UpdateCalls atomic.Int64
	DeleteCalls atomic.Int64

	mu    sync.Mutex
	tasks []domain.Task
}

var (
	_ store.TaskStore     = (*MockTaskStore)(nil)
	_ store.HealthChecker = (*MockTaskStore)(nil)
)

// NewMockTaskStore creates an empty store, optionally seeded.
func NewMockTaskStore(seed ...domain.Task) *MockTaskStore {
	m := &MockTaskStore{}
	m.tasks = append(m.tasks, seed...)
	return m
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.CreateCalls.Add(1)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(task.ID) >= 0 {
		return store.ErrTaskExists
	}
	m.tasks = append(m.tasks, *task)
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.GetCalls.Add(1)
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}
	t := m.tasks[i]
	return &t, nil
}

// List implements store.TaskStore.
func (m *MockTaskStore) List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	m.ListCalls.Add(1)
	if m.ListFn != nil {
		return m.ListFn(ctx, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if status == nil || t.Status == *status {
			out = append(out, t)
		}
	}
	return out, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	m.UpdateCalls.Add(1)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, patch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}
	patch.Apply(&m.tasks[i])
	t := m.tasks[i]
	return &t, nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id string) error {
	m.DeleteCalls.Add(1)
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

// Ping implements store.HealthChecker.
func (m *MockTaskStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// Snapshot returns a copy of the stored tasks in order.
func (m *MockTaskStore) Snapshot() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *MockTaskStore) indexOf(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
