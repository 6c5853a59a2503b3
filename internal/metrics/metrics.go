// Package metrics exposes the server's Prometheus collectors on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

const namespace = "linkshelf"

// Metrics holds every collector. It implements store.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	SnapshotsAppended *prometheus.CounterVec
	CollectionItems   prometheus.Gauge
	HistoryEntries    prometheus.Gauge
	BackendErrors     *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SnapshotsAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_appended_total",
			Help:      "History snapshots appended, by action and source",
		}, []string{"action", "source"}),

		CollectionItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_items",
			Help:      "Link records in the persisted collection",
		}),

		HistoryEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Snapshots in the persisted history",
		}),

		BackendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Failed document reads and writes",
		}, []string{"op"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) SnapshotAppended(action domain.Action, source string) {
	m.SnapshotsAppended.WithLabelValues(string(action), source).Inc()
}

func (m *Metrics) DocumentSize(items, history int) {
	m.CollectionItems.Set(float64(items))
	m.HistoryEntries.Set(float64(history))
}

func (m *Metrics) BackendError(op string) {
	m.BackendErrors.WithLabelValues(op).Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
