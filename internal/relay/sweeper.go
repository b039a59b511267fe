// ABOUTME: Retry sweeper that re-attempts Failed deliveries via a pluggable Attempter
// ABOUTME: Attempts run concurrently; an individual failure never aborts the sweep

package relay

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/2389/hookrelay/internal/store"
)

// Attempter is the outbound-delivery capability the sweeper retries through.
// Implementations report success with a nil error; any non-nil error leaves
// the record Failed.
type Attempter interface {
	Attempt(ctx context.Context, d *store.Delivery) error
}

// StubAttempter always reports success. It is the reference Attempter used
// when no outbound HTTP delivery is wired in.
type StubAttempter struct{}

// Attempt reports success unconditionally.
func (StubAttempter) Attempt(ctx context.Context, d *store.Delivery) error {
	return nil
}

// HTTPAttempter delivers the payload to the subscriber's URL with an HTTP POST.
// The subscription is resolved through the store via the delivery's
// SubscriptionID.
type HTTPAttempter struct {
	store  store.Store
	client *http.Client
}

// NewHTTPAttempter creates an Attempter that performs real outbound delivery.
func NewHTTPAttempter(s store.Store, client *http.Client) *HTTPAttempter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAttempter{store: s, client: client}
}

// Attempt POSTs the delivery payload to the subscriber's URL.
// Any status outside 2xx counts as a failed attempt.
func (a *HTTPAttempter) Attempt(ctx context.Context, d *store.Delivery) error {
	sub, err := a.store.GetSubscription(ctx, d.SubscriptionID)
	if err != nil {
		return fmt.Errorf("resolving subscription %s: %w", d.SubscriptionID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(d.Payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", d.EventType)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", sub.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("subscriber returned status %d", resp.StatusCode)
	}

	return nil
}

// Sweeper re-attempts Failed deliveries. Pending and Delivered records are
// never touched.
type Sweeper struct {
	store     store.Store
	attempter Attempter
	logger    *slog.Logger
}

// NewSweeper creates a retry sweeper using the given Attempter.
func NewSweeper(s store.Store, attempter Attempter) *Sweeper {
	return &Sweeper{
		store:     s,
		attempter: attempter,
		logger:    slog.Default().With("component", "sweeper"),
	}
}

// RetryFailed finds all Failed deliveries and re-attempts each one
// concurrently. A successful attempt flips the record to Delivered; a failed
// attempt leaves it Failed. Individual outcomes never abort the sweep, and
// there is no backoff or retry cap: a record can be retried across sweeps
// indefinitely.
//
// The returned slice holds every swept record with its post-sweep status.
func (s *Sweeper) RetryFailed(ctx context.Context) ([]*store.Delivery, error) {
	failed, err := s.store.ListDeliveriesByStatus(ctx, store.DeliveryStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("listing failed deliveries: %w", err)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		swept []*store.Delivery
	)

	for _, d := range failed {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()

			status := store.DeliveryStatusDelivered
			if err := s.attempter.Attempt(ctx, d); err != nil {
				s.logger.Warn("delivery attempt failed", "id", d.ID, "error", err)
				status = store.DeliveryStatusFailed
			}

			if err := s.store.UpdateDeliveryStatus(ctx, d.ID, status); err != nil {
				s.logger.Error("failed to update delivery status", "id", d.ID, "error", err)
				// Record stays Failed in the store; report what we know
				status = store.DeliveryStatusFailed
			}

			d.Status = status
			mu.Lock()
			swept = append(swept, d)
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.logger.Info("retry sweep complete", "swept", len(swept))
	return swept, nil
}
