package store

import (
	"context"

	"github.com/taskdesk/taskdesk-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
// Every method is a single-row operation; implementations must release
// connections and rows on every return path.
type TaskStore interface {
	// Create saves a new task. The task id is assigned by the caller.
	// Returns ErrTaskExists if the id is already taken.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by id.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// List returns tasks in insertion order. A non-nil status restricts
	// the result to tasks with exactly that status. The result is never nil.
	List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error)

	// Update merges patch into the stored task atomically and returns the
	// merged result. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task. Returns ErrTaskNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// HealthChecker is implemented by backends that can report reachability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
