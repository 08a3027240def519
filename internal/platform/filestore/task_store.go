package filestore

import (
	"context"
	"log/slog"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// TaskStore implements store.TaskStore on a single JSON array file. The
// array order is insertion order.
type TaskStore struct {
	file   *jsonFile[domain.Task]
	logger *slog.Logger
}

var (
	_ store.TaskStore     = (*TaskStore)(nil)
	_ store.HealthChecker = (*TaskStore)(nil)
)

// NewTaskStore creates a TaskStore backed by path. The file is created on
// the first write.
func NewTaskStore(path string, logger *slog.Logger) (*TaskStore, error) {
	f, err := newJSONFile[domain.Task](path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		file:   f,
		logger: logger.With(slog.String("component", "file_task_store")),
	}, nil
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	err := s.file.update(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		if indexOf(tasks, task.ID) >= 0 {
			return nil, store.ErrTaskExists
		}
		return append(tasks, *task), nil
	})
	if err != nil {
		return s.fail("create", err)
	}
	s.logger.Debug("task created", slog.String("task_id", task.ID))
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var found *domain.Task
	err := s.file.view(ctx, func(tasks []domain.Task) error {
		i := indexOf(tasks, id)
		if i < 0 {
			return store.ErrTaskNotFound
		}
		t := tasks[i]
		found = &t
		return nil
	})
	if err != nil {
		return nil, s.fail("get", err)
	}
	return found, nil
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	var out []domain.Task
	err := s.file.view(ctx, func(tasks []domain.Task) error {
		out = make([]domain.Task, 0, len(tasks))
		for _, t := range tasks {
			if status == nil || t.Status == *status {
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("list", err)
	}
	return out, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var updated domain.Task
	err := s.file.update(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, store.ErrTaskNotFound
		}
		patch.Apply(&tasks[i])
		updated = tasks[i]
		return tasks, nil
	})
	if err != nil {
		return nil, s.fail("update", err)
	}
	return &updated, nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	err := s.file.update(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, store.ErrTaskNotFound
		}
		return append(tasks[:i], tasks[i+1:]...), nil
	})
	if err != nil {
		return s.fail("delete", err)
	}
	return nil
}

// Ping implements store.HealthChecker.
func (s *TaskStore) Ping(ctx context.Context) error {
	return s.file.ping(ctx)
}

func (s *TaskStore) fail(op string, err error) error {
	if store.IsNotFoundError(err) || store.IsDuplicateError(err) {
		return err
	}
	s.logger.Error("task file operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return store.NewStoreError("task", op, "file access failed", err)
}

func indexOf(tasks []domain.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
