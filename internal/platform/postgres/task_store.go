package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

const taskColumns = "id, name, description, status"

// PostgresTaskStore implements store.TaskStore on the tasks table.
// Insertion order is kept by the position column.
type PostgresTaskStore struct {
	db           store.DBTX
	queryTimeout time.Duration
	logger       *slog.Logger
}

var (
	_ store.TaskStore     = (*PostgresTaskStore)(nil)
	_ store.HealthChecker = (*PostgresTaskStore)(nil)
)

// NewPostgresTaskStore creates a task store. A zero queryTimeout leaves
// deadlines to the caller's context.
func NewPostgresTaskStore(db store.DBTX, queryTimeout time.Duration, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "task_store")),
	}
}

func (s *PostgresTaskStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, name, description, status) VALUES ($1, $2, $3, $4)`,
		task.ID, task.Name, task.Description, string(task.Status))
	if err != nil {
		return s.fail("create", task.ID, err)
	}
	s.logger.Debug("task created", slog.String("task_id", task.ID))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		return nil, s.fail("get", id, err)
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		rows *sql.Rows
		err  error
	)
	if status == nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+taskColumns+` FROM tasks ORDER BY position`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY position`,
			string(*status))
	}
	if err != nil {
		return nil, s.fail("list", "", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", redact.Error(cerr)))
		}
	}()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, s.fail("list", "", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", "", err)
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update. Absent patch fields keep the
// stored value; the merge happens in a single statement.
func (s *PostgresTaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var status *string
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    status = COALESCE($4, status)
		WHERE id = $1
		RETURNING `+taskColumns,
		id, patch.Name, patch.Description, status)
	task, err := scanTask(row)
	if err != nil {
		return nil, s.fail("update", id, err)
	}
	return task, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return s.fail("delete", id, err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Ping implements store.HealthChecker.
func (s *PostgresTaskStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return MapError(err, nil, nil)
	}
	return nil
}

func (s *PostgresTaskStore) fail(op, id string, err error) error {
	mapped := MapError(err, store.ErrTaskNotFound, store.ErrTaskExists)
	if store.IsNotFoundError(mapped) || store.IsDuplicateError(mapped) {
		return mapped
	}
	s.logger.Error("task query failed",
		slog.String("operation", op),
		slog.String("task_id", id),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError("task", op, "database error", mapped)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &status); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
