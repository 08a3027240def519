package filestore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// userRecord is the on-disk user shape. domain.User hides the hash from
// JSON, so the file uses its own record.
type userRecord struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore implements store.UserStore on a JSON array file.
type UserStore struct {
	file   *jsonFile[userRecord]
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore backed by path.
func NewUserStore(path string, logger *slog.Logger) (*UserStore, error) {
	f, err := newJSONFile[userRecord](path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		file:   f,
		logger: logger.With(slog.String("component", "file_user_store")),
	}, nil
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", err)
	}
	err := s.file.update(ctx, func(users []userRecord) ([]userRecord, error) {
		for _, u := range users {
			if u.Username == user.Username {
				return nil, store.ErrUsernameExists
			}
		}
		return append(users, userRecord{
			ID:           user.ID,
			Username:     user.Username,
			PasswordHash: user.HashedPassword,
			CreatedAt:    user.CreatedAt,
		}), nil
	})
	if err != nil && !store.IsDuplicateError(err) {
		s.logger.Error("user file operation failed", slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "file access failed", err)
	}
	return err
}

// GetByUsername implements store.UserStore.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var found *domain.User
	err := s.file.view(ctx, func(users []userRecord) error {
		for _, u := range users {
			if u.Username == username {
				found = &domain.User{
					ID:             u.ID,
					Username:       u.Username,
					HashedPassword: u.PasswordHash,
					CreatedAt:      u.CreatedAt,
				}
				return nil
			}
		}
		return store.ErrUserNotFound
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, store.NewStoreError("user", "get", "file access failed", err)
	}
	return found, nil
}
