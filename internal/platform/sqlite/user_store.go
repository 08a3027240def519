package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/store"
	"gorm.io/gorm"
)

type userRow struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for userRow.
func (userRow) TableName() string {
	return "users"
}

// UserStore implements store.UserStore with gorm.
type UserStore struct {
	db           *gorm.DB
	queryTimeout time.Duration
	logger       *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore on an opened database.
func NewUserStore(db *gorm.DB, queryTimeout time.Duration, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "sqlite_user_store")),
	}
}

func (s *UserStore) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if s.queryTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
	}
	return s.db.WithContext(ctx), cancel
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", err)
	}
	db, cancel := s.session(ctx)
	defer cancel()

	row := userRow{
		ID:           user.ID.String(),
		Username:     user.Username,
		PasswordHash: user.HashedPassword,
		CreatedAt:    user.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return s.fail("create", err)
	}
	return nil
}

// GetByUsername implements store.UserStore.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var row userRow
	if err := db.First(&row, "username = ?", username).Error; err != nil {
		return nil, s.fail("get", err)
	}

	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, s.fail("get", err)
	}
	return &domain.User{
		ID:             id,
		Username:       row.Username,
		HashedPassword: row.PasswordHash,
		CreatedAt:      row.CreatedAt.UTC(),
	}, nil
}

func (s *UserStore) fail(op string, err error) error {
	mapped := mapError(err, store.ErrUserNotFound, store.ErrUsernameExists)
	if store.IsNotFoundError(mapped) || store.IsDuplicateError(mapped) {
		return mapped
	}
	s.logger.Error("user query failed",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError("user", op, "database error", mapped)
}
