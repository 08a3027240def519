package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
)

// DeleteTaskResponse is returned by DELETE /tasks/{id}.
type DeleteTaskResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	// Token is the JWT to send as "Authorization: Bearer <token>".
	Token     string `json:"token"`
	TokenType string `json:"token_type"`

	// ExpiresAt is an RFC 3339 timestamp.
	ExpiresAt string `json:"expires_at"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func newLoginResponse(t *auth.Token) LoginResponse {
	return LoginResponse{
		Token:     t.AccessToken,
		TokenType: t.TokenType,
		ExpiresAt: t.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
