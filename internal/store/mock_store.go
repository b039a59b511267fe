// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject failures

package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
// The Err* fields, when set, are returned by the corresponding methods
// so tests can exercise store-failure paths.
type MockStore struct {
	mu            sync.RWMutex
	principals    map[string]*Principal   // keyed by username
	subscriptions map[string]*Subscription
	deliveries    map[string]*Delivery

	ErrCreateDelivery error
	ErrUpdateDelivery error
	ErrListDeliveries error

	// CreateDeliveryHook, when set, runs before each insert with the 1-based
	// call number; a non-nil return fails that call only.
	CreateDeliveryHook func(call int) error

	createDeliveryCalls int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		principals:    make(map[string]*Principal),
		subscriptions: make(map[string]*Subscription),
		deliveries:    make(map[string]*Delivery),
	}
}

// CreatePrincipal stores a new principal.
func (m *MockStore) CreatePrincipal(ctx context.Context, p *Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.principals[p.Username]; ok {
		return ErrDuplicateUsername
	}

	// Make a copy to avoid external modification
	cp := *p
	m.principals[cp.Username] = &cp
	return nil
}

// GetPrincipalByUsername retrieves a principal by username.
func (m *MockStore) GetPrincipalByUsername(ctx context.Context, username string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.principals[username]
	if !ok {
		return nil, ErrNotFound
	}

	result := *p
	return &result, nil
}

// CreateSubscription stores a new subscription.
func (m *MockStore) CreateSubscription(ctx context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sub
	m.subscriptions[cp.ID] = &cp
	return nil
}

// GetSubscription retrieves a subscription by ID.
func (m *MockStore) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscriptions[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *sub
	return &result, nil
}

// ListSubscriptionsByOwner returns all subscriptions created by the given owner.
func (m *MockStore) ListSubscriptionsByOwner(ctx context.Context, owner string) ([]*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := []*Subscription{}
	for _, sub := range m.subscriptions {
		if sub.Owner == owner {
			cp := *sub
			subs = append(subs, &cp)
		}
	}
	return subs, nil
}

// ListSubscriptionsBySource returns all subscriptions registered for the given source.
func (m *MockStore) ListSubscriptionsBySource(ctx context.Context, source string) ([]*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := []*Subscription{}
	for _, sub := range m.subscriptions {
		if sub.Source == source {
			cp := *sub
			subs = append(subs, &cp)
		}
	}
	return subs, nil
}

// DeleteSubscription removes a subscription by ID.
func (m *MockStore) DeleteSubscription(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscriptions[id]; !ok {
		return ErrNotFound
	}
	delete(m.subscriptions, id)
	return nil
}

// CreateDelivery stores a new delivery record.
func (m *MockStore) CreateDelivery(ctx context.Context, d *Delivery) error {
	if m.ErrCreateDelivery != nil {
		return m.ErrCreateDelivery
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.createDeliveryCalls++
	if m.CreateDeliveryHook != nil {
		if err := m.CreateDeliveryHook(m.createDeliveryCalls); err != nil {
			return err
		}
	}

	cp := *d
	m.deliveries[cp.ID] = &cp
	return nil
}

// GetDelivery retrieves a delivery record by ID.
func (m *MockStore) GetDelivery(ctx context.Context, id string) (*Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.deliveries[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *d
	return &result, nil
}

// ListDeliveriesByStatus returns all delivery records with the given status.
func (m *MockStore) ListDeliveriesByStatus(ctx context.Context, status string) ([]*Delivery, error) {
	if m.ErrListDeliveries != nil {
		return nil, m.ErrListDeliveries
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	deliveries := []*Delivery{}
	for _, d := range m.deliveries {
		if d.Status == status {
			cp := *d
			deliveries = append(deliveries, &cp)
		}
	}
	return deliveries, nil
}

// UpdateDeliveryStatus updates the status of a delivery record.
func (m *MockStore) UpdateDeliveryStatus(ctx context.Context, id string, status string) error {
	if m.ErrUpdateDelivery != nil {
		return m.ErrUpdateDelivery
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)
