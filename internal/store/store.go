// ABOUTME: Store interface and data types for hookrelay persistence
// ABOUTME: Defines Principal, Subscription, Delivery structs and the Store interface

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when registering a username that already exists
var ErrDuplicateUsername = errors.New("username already exists")

// Principal represents a registered identity that can manage subscriptions
type Principal struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// Subscription represents a webhook subscription registered for an event source
type Subscription struct {
	ID        string
	URL       string // delivery target, always non-empty for a persisted record
	Source    string // event category, always non-empty for a persisted record
	Secret    string // opaque token generated at creation, reserved for signature verification
	Owner     string // username of the principal that created it
	CreatedAt time.Time
}

// DeliveryStatus constants for delivery records
const (
	DeliveryStatusPending   = "Pending"
	DeliveryStatusDelivered = "Delivered"
	DeliveryStatusFailed    = "Failed"
)

// Delivery represents one pending or attempted notification to one subscriber.
// Payload is kept verbatim as the raw JSON the producer submitted.
type Delivery struct {
	ID             string
	SubscriptionID string
	EventType      string
	Payload        json.RawMessage
	Timestamp      time.Time
	Status         string // "Pending", "Delivered", "Failed"
}

// Store defines the interface for hookrelay persistence
type Store interface {
	// Principals
	CreatePrincipal(ctx context.Context, p *Principal) error
	GetPrincipalByUsername(ctx context.Context, username string) (*Principal, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, sub *Subscription) error
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	ListSubscriptionsByOwner(ctx context.Context, owner string) ([]*Subscription, error)
	ListSubscriptionsBySource(ctx context.Context, source string) ([]*Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Deliveries
	CreateDelivery(ctx context.Context, d *Delivery) error
	GetDelivery(ctx context.Context, id string) (*Delivery, error)
	ListDeliveriesByStatus(ctx context.Context, status string) ([]*Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, id string, status string) error

	// Close releases any resources held by the store
	Close() error
}
