package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	limited := ratelimit.NewExceededError(ratelimit.Decision{Limit: 2, ResetAt: time.Now().Add(time.Minute)}, "slow down")

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     domain.NewValidationError("name", "is required", domain.ErrInvalidFormat),
			status:  http.StatusBadRequest,
			message: "Validation failed",
		},
		{
			name:    "missing token",
			err:     auth.ErrMissingToken,
			status:  http.StatusUnauthorized,
			message: "Authorization token required",
		},
		{
			name:    "invalid token",
			err:     fmt.Errorf("verify: %w", auth.ErrInvalidToken),
			status:  http.StatusForbidden,
			message: "Invalid or expired token",
		},
		{
			name:    "expired token",
			err:     auth.ErrExpiredToken,
			status:  http.StatusForbidden,
			message: "Invalid or expired token",
		},
		{
			name:    "token not yet valid",
			err:     auth.ErrTokenNotYetValid,
			status:  http.StatusForbidden,
			message: "Invalid or expired token",
		},
		{
			name:    "invalid credentials",
			err:     auth.ErrInvalidCredentials,
			status:  http.StatusUnauthorized,
			message: "Invalid credentials",
		},
		{
			name:    "task not found",
			err:     store.NewStoreError("task", "get", "lookup failed", store.ErrTaskNotFound),
			status:  http.StatusNotFound,
			message: "Task not found",
		},
		{
			name:    "username exists",
			err:     store.ErrUsernameExists,
			status:  http.StatusBadRequest,
			message: "Username already registered",
		},
		{
			name:    "task exists",
			err:     store.ErrTaskExists,
			status:  http.StatusConflict,
			message: "Task already exists",
		},
		{
			name:    "rate limited",
			err:     limited,
			status:  http.StatusTooManyRequests,
			message: "slow down",
		},
		{
			name:    "timeout",
			err:     store.NewStoreError("task", "list", "query failed", store.ErrTimeout),
			status:  http.StatusGatewayTimeout,
			message: "The request timed out",
		},
		{
			name:    "store unavailable",
			err:     store.ErrUnavailable,
			status:  http.StatusInternalServerError,
			message: "An unexpected error occurred",
		},
		{
			name:    "unknown",
			err:     errors.New("pq: password authentication failed for user admin"),
			status:  http.StatusInternalServerError,
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
