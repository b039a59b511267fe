// ABOUTME: Subscription registry owning subscriber records keyed by source and owner
// ABOUTME: Handles subscribe, listing, source resolution, and unsubscribe

package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/hookrelay/internal/store"
)

// Registry owns subscription records. All persistence goes through the store;
// the registry adds validation and secret generation on top.
type Registry struct {
	store  store.Store
	logger *slog.Logger
}

// NewRegistry creates a new subscription registry.
func NewRegistry(s store.Store) *Registry {
	return &Registry{
		store:  s,
		logger: slog.Default().With("component", "registry"),
	}
}

// Subscribe registers a new webhook subscription for the given owner.
// Returns ErrValidation if url or source is empty. A fresh opaque secret is
// generated for every subscription. Duplicate (owner, source, url) triples
// are permitted.
func (r *Registry) Subscribe(ctx context.Context, owner, url, source string) (*store.Subscription, error) {
	if url == "" || source == "" {
		return nil, fmt.Errorf("%w: url and source are required", ErrValidation)
	}

	sub := &store.Subscription{
		ID:        uuid.New().String(),
		URL:       url,
		Source:    source,
		Secret:    uuid.New().String(),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.store.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("persisting subscription: %w", err)
	}

	r.logger.Info("subscribed", "id", sub.ID, "source", source, "owner", owner)
	return sub, nil
}

// ListByOwner returns all subscriptions created by the given owner, in
// unspecified order. Returns ErrValidation if owner is empty: the caller
// must supply a known principal.
func (r *Registry) ListByOwner(ctx context.Context, owner string) ([]*store.Subscription, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	return r.store.ListSubscriptionsByOwner(ctx, owner)
}

// FindBySource returns all subscriptions registered for the given source.
// An empty slice is returned when none exist.
func (r *Registry) FindBySource(ctx context.Context, source string) ([]*store.Subscription, error) {
	return r.store.ListSubscriptionsBySource(ctx, source)
}

// Unsubscribe deletes the subscription with the given ID.
// Returns store.ErrNotFound if it doesn't exist; deletion is not idempotent,
// so a second call with the same ID fails the same way.
func (r *Registry) Unsubscribe(ctx context.Context, id string) error {
	if err := r.store.DeleteSubscription(ctx, id); err != nil {
		return err
	}
	r.logger.Info("unsubscribed", "id", id)
	return nil
}
