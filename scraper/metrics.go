package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ItemsTotal      *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Total pages walked per source.",
		},
		[]string{"source"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_items_total",
			Help: "Total records collected per source.",
		},
		[]string{"source"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total scraper errors by source and type.",
		},
		[]string{"source", "error_type"},
	)

	registry.MustRegister(pages, requestDuration, items, errorsTotal)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		RequestDuration: requestDuration,
		ItemsTotal:      items,
		ErrorsTotal:     errorsTotal,
	}
}

// IncPage counts one walked page for a source.
func (m *Metrics) IncPage(source string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(source).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddItems counts records collected for a source.
func (m *Metrics) AddItems(source string, n int) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(source).Add(float64(n))
}

// IncError counts one error for a source and type label.
func (m *Metrics) IncError(source, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(source, errorType).Inc()
}
