package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credential bounds.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// User validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User is a registered account that may perform task writes.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Credentials is a validated username/password pair.
type Credentials struct {
	Username string
	Password string
}

// NewUser creates a User with a fresh id from an already hashed password.
func NewUser(username, hashedPassword string) (*User, error) {
	u := &User{
		ID:             uuid.New(),
		Username:       strings.TrimSpace(username),
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the invariants a stored user must satisfy.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}
	return nil
}
