package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// PostgresUserStore implements store.UserStore on the users table.
type PostgresUserStore struct {
	db           store.DBTX
	queryTimeout time.Duration
	logger       *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a user store.
func NewPostgresUserStore(db store.DBTX, queryTimeout time.Duration, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:           db,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "user_store")),
	}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", err)
	}
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.HashedPassword, user.CreatedAt)
	if err != nil {
		return s.fail("create", err)
	}
	return nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username).Scan(&u.ID, &u.Username, &u.HashedPassword, &u.CreatedAt)
	if err != nil {
		return nil, s.fail("get", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *PostgresUserStore) fail(op string, err error) error {
	mapped := MapError(err, store.ErrUserNotFound, store.ErrUsernameExists)
	if store.IsNotFoundError(mapped) || store.IsDuplicateError(mapped) {
		return mapped
	}
	s.logger.Error("user query failed",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError("user", op, "database error", mapped)
}
