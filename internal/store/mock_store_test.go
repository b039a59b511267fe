// ABOUTME: Tests for the MockStore used by other packages' tests
// ABOUTME: Verifies the mock matches real store semantics for the paths tests rely on

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_SubscriptionLifecycle(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	sub := &Subscription{
		ID:        "sub-1",
		URL:       "https://example.com/hook",
		Source:    "orders",
		Secret:    "s",
		Owner:     "alice",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, m.CreateSubscription(ctx, sub))

	bySource, err := m.ListSubscriptionsBySource(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, bySource, 1)

	byOwner, err := m.ListSubscriptionsByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	require.NoError(t, m.DeleteSubscription(ctx, "sub-1"))
	assert.ErrorIs(t, m.DeleteSubscription(ctx, "sub-1"), ErrNotFound)
}

func TestMockStore_DuplicateUsername(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.CreatePrincipal(ctx, &Principal{ID: "p1", Username: "alice"}))
	assert.ErrorIs(t, m.CreatePrincipal(ctx, &Principal{ID: "p2", Username: "alice"}), ErrDuplicateUsername)
}

func TestMockStore_InjectedFailures(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	boom := errors.New("store down")
	m.ErrCreateDelivery = boom

	err := m.CreateDelivery(ctx, &Delivery{ID: "del-1", Status: DeliveryStatusPending})
	assert.ErrorIs(t, err, boom)

	m.ErrCreateDelivery = nil
	require.NoError(t, m.CreateDelivery(ctx, &Delivery{ID: "del-1", Status: DeliveryStatusPending}))

	m.ErrUpdateDelivery = boom
	assert.ErrorIs(t, m.UpdateDeliveryStatus(ctx, "del-1", DeliveryStatusDelivered), boom)
}

func TestMockStore_CreateDeliveryHook(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	boom := errors.New("store down")
	m.CreateDeliveryHook = func(call int) error {
		if call == 2 {
			return boom
		}
		return nil
	}

	require.NoError(t, m.CreateDelivery(ctx, &Delivery{ID: "del-1", Status: DeliveryStatusPending}))
	assert.ErrorIs(t, m.CreateDelivery(ctx, &Delivery{ID: "del-2", Status: DeliveryStatusPending}), boom)
	require.NoError(t, m.CreateDelivery(ctx, &Delivery{ID: "del-3", Status: DeliveryStatusPending}))

	// Only the failed call is dropped
	pending, err := m.ListDeliveriesByStatus(ctx, DeliveryStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.CreateDelivery(ctx, &Delivery{ID: "del-1", Status: DeliveryStatusPending}))

	d, err := m.GetDelivery(ctx, "del-1")
	require.NoError(t, err)
	d.Status = DeliveryStatusFailed

	again, err := m.GetDelivery(ctx, "del-1")
	require.NoError(t, err)
	assert.Equal(t, DeliveryStatusPending, again.Status)
}
