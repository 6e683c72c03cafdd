// Package metrics exposes the Prometheus counters of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "glucose_insights"

// Import row outcomes
const (
	RowImported = "imported"
	RowSkipped  = "skipped"
)

// Collector holds all Prometheus metrics for the application. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	AnalysesRun      prometheus.Counter
	PatternsDetected *prometheus.CounterVec
	ImportRows       *prometheus.CounterVec
	ChartReadings    *prometheus.CounterVec
	BotUpdates       *prometheus.CounterVec
}

// NewCollector creates a collector on its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AnalysesRun: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "analyses_total",
				Help:      "Total number of analyses run",
			},
		),
		PatternsDetected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "patterns_detected_total",
				Help:      "Detected patterns by type",
			},
			[]string{"pattern"},
		),
		ImportRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "import_rows_total",
				Help:      "CSV import rows by outcome",
			},
			[]string{"outcome"},
		),
		ChartReadings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "chart_readings_total",
				Help:      "Readings extracted from chart images by source",
			},
			[]string{"source"},
		),
		BotUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "bot_updates_total",
				Help:      "Telegram updates by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.AnalysesRun,
		c.PatternsDetected,
		c.ImportRows,
		c.ChartReadings,
		c.BotUpdates,
	)
	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveAnalysis(patternTypes []string) {
	if c == nil {
		return
	}
	c.AnalysesRun.Inc()
	for _, p := range patternTypes {
		c.PatternsDetected.WithLabelValues(p).Inc()
	}
}

func (c *Collector) ObserveImport(imported, skipped int) {
	if c == nil {
		return
	}
	c.ImportRows.WithLabelValues(RowImported).Add(float64(imported))
	c.ImportRows.WithLabelValues(RowSkipped).Add(float64(skipped))
}

func (c *Collector) ObserveChart(source string, readings int) {
	if c == nil {
		return
	}
	c.ChartReadings.WithLabelValues(source).Add(float64(readings))
}

func (c *Collector) ObserveBotUpdate(kind string) {
	if c == nil {
		return
	}
	c.BotUpdates.WithLabelValues(kind).Inc()
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
