// Package auth issues and verifies access tokens and manages user
// credentials for the task API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// Identity is the verified caller of a request.
type Identity struct {
	UserID   uuid.UUID
	Username string
	TokenID  string
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Authenticator registers users, issues tokens and verifies Authorization
// headers.
type Authenticator struct {
	users    store.UserStore
	tokens   JWTService
	hasher   PasswordHasher
	verifier PasswordVerifier
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator. All dependencies are required.
func NewAuthenticator(
	users store.UserStore,
	tokens JWTService,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	log *slog.Logger,
) (*Authenticator, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if hasher == nil || verifier == nil {
		return nil, errors.New("password hasher and verifier cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		verifier: verifier,
		logger:   log.With(slog.String("component", "authenticator")),
	}, nil
}

// Register hashes the password and stores a new user.
// Returns store.ErrUsernameExists when the username is taken.
func (a *Authenticator) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	hash, err := a.hasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := domain.NewUser(creds.Username, hash)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("registration rejected: username taken", "username", user.Username)
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues an access token.
// Unknown users and wrong passwords both return ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, creds domain.Credentials) (*Token, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	user, err := a.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login rejected: unknown username")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := a.verifier.Compare(user.HashedPassword, creds.Password); err != nil {
		log.Debug("login rejected: password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	signed, expiresAt, err := a.tokens.GenerateToken(ctx, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &Token{AccessToken: signed, TokenType: BearerScheme, ExpiresAt: expiresAt}, nil
}

// Verify checks an Authorization header value. A missing header or empty
// credential yields ErrMissingToken; any other failure yields
// ErrInvalidToken or ErrExpiredToken.
func (a *Authenticator) Verify(ctx context.Context, header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, BearerScheme) {
		return Identity{}, ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return Identity{}, ErrMissingToken
	}

	claims, err := a.tokens.ValidateToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: claims.UserID, Username: claims.Username, TokenID: claims.ID}, nil
}
