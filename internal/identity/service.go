// ABOUTME: Principal registration and login service backed by the store
// ABOUTME: Hashes passwords with bcrypt and issues HS256 bearer tokens

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/hookrelay/internal/auth"
	"github.com/2389/hookrelay/internal/store"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
)

// Service handles principal registration, login, and token validation.
type Service struct {
	store  store.Store
	tokens *auth.Tokens
	logger *slog.Logger
}

// NewService creates a new identity service. Token lifetime is set by the
// tokens policy.
func NewService(s store.Store, tokens *auth.Tokens) *Service {
	return &Service{
		store:  s,
		tokens: tokens,
		logger: slog.Default().With("component", "identity"),
	}
}

// Register creates a new principal with a bcrypt-hashed password.
// Returns store.ErrDuplicateUsername if the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) (*store.Principal, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p := &store.Principal{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreatePrincipal(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("registered principal", "username", username)
	return p, nil
}

// dummyHash is a valid bcrypt hash used for timing-safe comparison when the
// user doesn't exist. This prevents timing attacks that could enumerate
// valid usernames.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Login verifies the credentials and returns a signed bearer token.
// Returns ErrInvalidCredentials for an unknown username or wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	p, err := s.store.GetPrincipalByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dummy bcrypt comparison to maintain constant timing
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up principal: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(p.Username)
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}

	s.logger.Info("issued token", "username", username)
	return token, nil
}

// Validate reports whether the given bearer token is currently valid.
func (s *Service) Validate(token string) bool {
	_, err := s.tokens.Verify(token)
	return err == nil
}
