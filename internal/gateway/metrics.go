// ABOUTME: Prometheus metrics for relay traffic
// ABOUTME: Counters are registered on a per-gateway registry and served via promhttp

package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the gateway's prometheus counters. Each Gateway gets its own
// registry so multiple instances can coexist in one process (tests rely on
// this).
type metrics struct {
	registry *prometheus.Registry

	eventsIngestedTotal       prometheus.Counter
	deliveriesCreatedTotal    prometheus.Counter
	deliveriesRetriedTotal    prometheus.Counter
	subscriptionsCreatedTotal prometheus.Counter
}

// newMetrics creates and registers the gateway counters.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		eventsIngestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookrelay_events_ingested_total",
			Help: "Total number of events accepted for fan-out",
		}),
		deliveriesCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookrelay_deliveries_created_total",
			Help: "Total number of delivery records created by fan-out",
		}),
		deliveriesRetriedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookrelay_deliveries_retried_total",
			Help: "Total number of delivery records swept by retry",
		}),
		subscriptionsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookrelay_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		}),
	}

	m.registry.MustRegister(
		m.eventsIngestedTotal,
		m.deliveriesCreatedTotal,
		m.deliveriesRetriedTotal,
		m.subscriptionsCreatedTotal,
	)

	return m
}

// handler returns the HTTP handler serving the registered metrics.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
