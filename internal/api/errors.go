package api

import (
	"errors"
	"net/http"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Unknown
// errors are 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusForbidden

	case errors.Is(err, ratelimit.ErrLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrUsernameExists):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrTimeout):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var exceeded *ratelimit.ExceededError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization token required"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid or expired token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.As(err, &exceeded):
		return exceeded.Message

	case errors.Is(err, ratelimit.ErrLimited):
		return "Too many requests"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already registered"

	case errors.Is(err, store.ErrTaskExists):
		return "Task already exists"

	case errors.Is(err, store.ErrTimeout):
		return "The request timed out"

	default:
		return "An unexpected error occurred"
	}
}
