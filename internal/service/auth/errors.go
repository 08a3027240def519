package auth

import (
	"errors"
	"fmt"
)

// Common authentication service errors
var (
	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidToken indicates the token format, scheme or signature is invalid.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf/iat in the future).
	ErrTokenNotYetValid = fmt.Errorf("%w: not yet valid", ErrInvalidToken)

	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
