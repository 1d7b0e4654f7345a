package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns a default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
	}
}

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BulkItemsTotal      *prometheus.CounterVec
	AllocationsTotal    *prometheus.CounterVec
}

// New creates and registers the service collectors
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": config.ServiceName}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by method, path and status",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		BulkItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "bulk_items_total",
			Help:        "Bulk operation items by operation and outcome",
			ConstLabels: labels,
		}, []string{"operation", "outcome"}),
		AllocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "allocations_total",
			Help:        "Allocation attempts by outcome (full, shortage, failed)",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BulkItemsTotal,
		m.AllocationsTotal,
	)

	return m
}

// Handler returns the HTTP handler serving the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBulkItem records one bulk item outcome (success, failure, skipped)
func (m *Metrics) ObserveBulkItem(operation, outcome string) {
	m.BulkItemsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveAllocation records one allocation attempt outcome
func (m *Metrics) ObserveAllocation(outcome string) {
	m.AllocationsTotal.WithLabelValues(outcome).Inc()
}
