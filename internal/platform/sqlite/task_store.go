package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/store"
	"gorm.io/gorm"
)

// taskRow is the tasks table. Listing orders by rowid, which grows with
// every insert.
type taskRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"size:255;not null"`
	Status      string `gorm:"not null;index"`
}

// TableName returns the table name for taskRow.
func (taskRow) TableName() string {
	return "tasks"
}

func (r taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
	}
}

// TaskStore implements store.TaskStore with gorm.
type TaskStore struct {
	db           *gorm.DB
	queryTimeout time.Duration
	logger       *slog.Logger
}

var (
	_ store.TaskStore     = (*TaskStore)(nil)
	_ store.HealthChecker = (*TaskStore)(nil)
)

// NewTaskStore creates a TaskStore on an opened database.
func NewTaskStore(db *gorm.DB, queryTimeout time.Duration, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "sqlite_task_store")),
	}
}

func (s *TaskStore) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if s.queryTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
	}
	return s.db.WithContext(ctx), cancel
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	db, cancel := s.session(ctx)
	defer cancel()

	row := taskRow{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
	}
	if err := db.Create(&row).Error; err != nil {
		return s.fail("create", task.ID, err)
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var row taskRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, s.fail("get", id, err)
	}
	t := row.toDomain()
	return &t, nil
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	q := db.Model(&taskRow{}).Order("rowid")
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var rows []taskRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, s.fail("list", "", err)
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// Update implements store.TaskStore. The read and merge run in one
// transaction.
func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var merged domain.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		var row taskRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		merged = row.toDomain()
		if patch.IsEmpty() {
			return nil
		}
		patch.Apply(&merged)
		return tx.Model(&taskRow{}).Where("id = ?", id).Updates(map[string]any{
			"name":        merged.Name,
			"description": merged.Description,
			"status":      string(merged.Status),
		}).Error
	})
	if err != nil {
		return nil, s.fail("update", id, err)
	}
	return &merged, nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.session(ctx)
	defer cancel()

	result := db.Delete(&taskRow{}, "id = ?", id)
	if result.Error != nil {
		return s.fail("delete", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Ping implements store.HealthChecker.
func (s *TaskStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return mapError(err, store.ErrNotFound, store.ErrDuplicate)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mapError(err, store.ErrNotFound, store.ErrDuplicate)
	}
	return nil
}

func (s *TaskStore) fail(op, id string, err error) error {
	mapped := mapError(err, store.ErrTaskNotFound, store.ErrTaskExists)
	if store.IsNotFoundError(mapped) || store.IsDuplicateError(mapped) {
		return mapped
	}
	s.logger.Error("task query failed",
		slog.String("operation", op),
		slog.String("task_id", id),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError("task", op, "database error", mapped)
}
