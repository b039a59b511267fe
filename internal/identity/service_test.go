// ABOUTME: Tests for principal registration and login
// ABOUTME: Covers bcrypt hashing, duplicate usernames, and token issuance

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/hookrelay/internal/auth"
	"github.com/2389/hookrelay/internal/store"
)

func newTestService() (*Service, *auth.Tokens) {
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)
	return NewService(store.NewMockStore(), tokens), tokens
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "alice", p.Username)

	// Password is stored as a bcrypt hash, never plaintext
	assert.NotEqual(t, "hunter2", p.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("hunter2")))
}

func TestService_Register_MissingFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "hunter2")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other-password")
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)
}

func TestService_Login(t *testing.T) {
	svc, tokens := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", principal)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Login(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Validate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	assert.True(t, svc.Validate(token))
	assert.False(t, svc.Validate("not-a-token"))

	expired, err := auth.NewTokens([]byte("test-secret"), -time.Minute).Mint("alice")
	require.NoError(t, err)
	assert.False(t, svc.Validate(expired))
}
