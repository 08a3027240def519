package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user and returns
	// it with its expiry time.
	GenerateToken(ctx context.Context, userID uuid.UUID, username string) (string, time.Time, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	UserID    uuid.UUID
	Username  string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
