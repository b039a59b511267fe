// ABOUTME: Fan-out dispatcher turning one inbound event into N pending deliveries
// ABOUTME: Resolves subscribers by source and records one ledger entry per match

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/hookrelay/internal/store"
)

// Dispatcher fans inbound events out to every subscriber registered for the
// event's source, creating one Pending delivery record per match.
type Dispatcher struct {
	store    store.Store
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a new fan-out dispatcher.
func NewDispatcher(s store.Store, registry *Registry) *Dispatcher {
	return &Dispatcher{
		store:    s,
		registry: registry,
		logger:   slog.Default().With("component", "dispatcher"),
	}
}

// Ingest resolves the subscribers for source and records one Pending delivery
// per subscriber. The payload is carried verbatim into every record.
//
// Returns ErrNoSubscribers (and creates nothing) when the source has no
// registered subscribers. Record creation is dispatched concurrently and is
// not atomic: if the store fails mid-batch, whichever records succeeded
// remain, the survivors are returned, and the creation errors are joined
// into the returned error.
func (d *Dispatcher) Ingest(ctx context.Context, source, eventType string, payload json.RawMessage) ([]*store.Delivery, error) {
	subs, err := d.registry.FindBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("resolving subscribers: %w", err)
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSubscribers, source)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		created []*store.Delivery
		errs    []error
	)

	for _, sub := range subs {
		d1 := &store.Delivery{
			ID:             uuid.New().String(),
			SubscriptionID: sub.ID,
			EventType:      eventType,
			Payload:        payload,
			Timestamp:      time.Now().UTC(),
			Status:         store.DeliveryStatusPending,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.store.CreateDelivery(ctx, d1); err != nil {
				d.logger.Error("failed to record delivery", "subscription_id", d1.SubscriptionID, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			mu.Lock()
			created = append(created, d1)
			mu.Unlock()
		}()
	}
	wg.Wait()

	d.logger.Info("fanned out event",
		"source", source,
		"event_type", eventType,
		"subscribers", len(subs),
		"recorded", len(created),
	)

	return created, errors.Join(errs...)
}
