// Package observability holds the Prometheus metrics recorded by the API
// client, the period store and the refresher.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aquarius"

// Metrics holds the Prometheus counters and histograms for a CLI run.
type Metrics struct {
	Registry *prometheus.Registry

	APIRequests        *prometheus.CounterVec   // labels: endpoint, outcome={success,http_error,transport_error,decode_error,circuit_open}
	APIRequestDuration *prometheus.HistogramVec // labels: endpoint
	PeriodChanges      prometheus.Counter
	RefreshStale       prometheus.Counter
	RefreshApplied     prometheus.Counter
}

// NewMetrics creates all metrics and registers them with a private registry,
// so separate instances never collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Dam API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Dam API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		PeriodChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_changes_total",
			Help:      "Changes to the selected reporting period. Restoring the saved period is not counted.",
		}),
		RefreshStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_stale_total",
			Help:      "Refresh results discarded because a newer request superseded them.",
		}),
		RefreshApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_applied_total",
			Help:      "Refresh results applied to the view.",
		}),
	}
	m.Registry.MustRegister(
		m.APIRequests,
		m.APIRequestDuration,
		m.PeriodChanges,
		m.RefreshStale,
		m.RefreshApplied,
	)
	return m
}

// WriteTextfile writes the registry in node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
