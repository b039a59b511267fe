// ABOUTME: Tests for the subscription registry
// ABOUTME: Covers validation, secret generation, duplicates, and non-idempotent unsubscribe

package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/hookrelay/internal/store"
)

func TestRegistry_Subscribe(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())
	ctx := context.Background()

	sub, err := reg.Subscribe(ctx, "alice", "https://x/hook", "orders")
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID)
	assert.NotEmpty(t, sub.Secret)
	assert.Equal(t, "https://x/hook", sub.URL)
	assert.Equal(t, "orders", sub.Source)
	assert.Equal(t, "alice", sub.Owner)
}

func TestRegistry_Subscribe_Validation(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())
	ctx := context.Background()

	_, err := reg.Subscribe(ctx, "alice", "", "orders")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = reg.Subscribe(ctx, "alice", "https://x/hook", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegistry_Subscribe_DuplicatesPermitted(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())
	ctx := context.Background()

	first, err := reg.Subscribe(ctx, "alice", "https://x/hook", "orders")
	require.NoError(t, err)

	second, err := reg.Subscribe(ctx, "alice", "https://x/hook", "orders")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Secret, second.Secret)

	subs, err := reg.FindBySource(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestRegistry_ListByOwner_RoundTrip(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())
	ctx := context.Background()

	created, err := reg.Subscribe(ctx, "alice", "https://x/hook", "orders")
	require.NoError(t, err)

	subs, err := reg.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, created.ID, subs[0].ID)
	assert.Equal(t, "https://x/hook", subs[0].URL)
	assert.Equal(t, "orders", subs[0].Source)
}

func TestRegistry_ListByOwner_EmptyOwner(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())

	_, err := reg.ListByOwner(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegistry_FindBySource_Empty(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())

	subs, err := reg.FindBySource(context.Background(), "ghost-source")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestRegistry_Unsubscribe_NotIdempotent(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())
	ctx := context.Background()

	sub, err := reg.Subscribe(ctx, "alice", "https://x/hook", "orders")
	require.NoError(t, err)

	require.NoError(t, reg.Unsubscribe(ctx, sub.ID))

	// Second call with the same id fails
	err = reg.Unsubscribe(ctx, sub.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegistry_Unsubscribe_Unknown(t *testing.T) {
	reg := NewRegistry(store.NewMockStore())

	err := reg.Unsubscribe(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
