package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wayfare-dev/wayfare/pkg/dispatch"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wayfare").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "wayfare",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for Wayfare.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	preloadOutcomes    *prometheus.CounterVec
	viewUpdatesSent    prometheus.Counter
	activeSessions     prometheus.Gauge
	wsErrors           *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"view", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"view"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of aborted navigations",
			ConstLabels: config.ConstLabels,
		}, []string{"view", "error_type"}),

		preloadOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preload_outcomes_total",
			Help:        "Preload effect outcomes per navigation",
			ConstLabels: config.ConstLabels,
		}, []string{"view", "outcome"}),

		viewUpdatesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_updates_sent_total",
			Help:        "Total number of view updates sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates dispatch middleware that collects Prometheus metrics
// for navigations.
//
// Metrics collected:
//   - wayfare_navigations_total: Counter of navigations by view and status
//   - wayfare_navigation_duration_seconds: Histogram of dispatch duration
//   - wayfare_navigation_errors_total: Counter of aborted navigations
//   - wayfare_preload_outcomes_total: Counter of preload outcomes (when ObservePreload is wired)
//   - wayfare_view_updates_sent_total: Counter of view updates (when RecordViewUpdate is called)
//   - wayfare_active_sessions: Gauge of active sessions (when session hooks are used)
//   - wayfare_websocket_errors_total: Counter of WebSocket errors
//
// Example:
//
//	d := dispatch.New(table, dispatch.WithPreloadObserver(middleware.ObservePreload))
//	d.Use(middleware.Prometheus(middleware.WithNamespace("myapp")))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) dispatch.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return dispatch.MiddlewareFunc(func(ctx context.Context, nav *dispatch.Navigation, next func() error) error {
		view := nav.Match.Name
		if view == "" {
			view = "unknown"
		}

		start := time.Now()
		err := next()
		m.navigationDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.navigationErrors.WithLabelValues(view, categorizeError(err)).Inc()
		}
		m.navigationsTotal.WithLabelValues(view, status).Inc()

		return err
	})
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	errStr := err.Error()
	switch {
	case contains(errStr, "timeout"):
		return "timeout"
	case contains(errStr, "rate limit"):
		return "rate_limit"
	case contains(errStr, "invalid"):
		return "invalid_target"
	case contains(errStr, "unauthorized"):
		return "unauthorized"
	case contains(errStr, "forbidden"):
		return "forbidden"
	case contains(errStr, "websocket"):
		return "websocket"
	default:
		return "internal"
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// ObservePreload records a preload outcome. Pass it to
// dispatch.WithPreloadObserver to count preload runs, cache hits, drops,
// and errors per view.
func ObservePreload(view string, outcome dispatch.PreloadOutcome) {
	if globalMetrics != nil {
		globalMetrics.preloadOutcomes.WithLabelValues(view, string(outcome)).Inc()
	}
}

// RecordViewUpdate records a view update sent to a client.
func RecordViewUpdate() {
	if globalMetrics != nil {
		globalMetrics.viewUpdatesSent.Inc()
	}
}

// RecordSessionOpen records a new WebSocket session.
func RecordSessionOpen() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Inc()
	}
}

// RecordSessionClose records a WebSocket session ending.
func RecordSessionClose() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Dec()
	}
}

// RecordWebSocketError records a WebSocket error.
func RecordWebSocketError(errorType string) {
	if globalMetrics != nil {
		globalMetrics.wsErrors.WithLabelValues(errorType).Inc()
	}
}

// Collector exposes the metrics for use in custom registrations.
// This allows collecting Wayfare metrics alongside other application metrics.
type Collector struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	preloadOutcomes    *prometheus.CounterVec
	viewUpdatesSent    prometheus.Counter
	activeSessions     prometheus.Gauge
	wsErrors           *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		navigationsTotal:   globalMetrics.navigationsTotal,
		navigationDuration: globalMetrics.navigationDuration,
		navigationErrors:   globalMetrics.navigationErrors,
		preloadOutcomes:    globalMetrics.preloadOutcomes,
		viewUpdatesSent:    globalMetrics.viewUpdatesSent,
		activeSessions:     globalMetrics.activeSessions,
		wsErrors:           globalMetrics.wsErrors,
	}
}
