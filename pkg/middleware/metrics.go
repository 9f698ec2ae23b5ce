package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/toastkit/toastkit/pkg/toast"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toastkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for visible duration, in seconds.
	// Default: visibleDurationBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
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

// WithBuckets sets the visible-duration histogram buckets.
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

// visibleDurationBuckets covers the expected range of toast lifetimes: most
// toasts live single-digit seconds, persistent ones can live much longer.
var visibleDurationBuckets = []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 300}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "toastkit",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     visibleDurationBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// PrometheusObserver records toast lifecycle metrics. It implements
// toast.Observer.
type PrometheusObserver struct {
	shownTotal      *prometheus.CounterVec
	dismissedTotal  *prometheus.CounterVec
	active          *prometheus.GaugeVec
	visibleDuration *prometheus.HistogramVec
}

// globalObserver is the singleton observer for the default registry.
// Registering the same collectors twice panics, so repeated Prometheus()
// calls against the default registry return the first instance.
var (
	globalObserver   *PrometheusObserver
	globalObserverMu sync.Mutex
)

// Prometheus creates an observer that records toast lifecycle metrics.
//
// Metrics collected:
//   - toastkit_toasts_shown_total: counter by type and position
//   - toastkit_toasts_dismissed_total: counter by type, position, and reason
//   - toastkit_toasts_active: gauge of visible toasts by position
//   - toastkit_toast_visible_duration_seconds: histogram of time from show
//     to dismissal, by reason
//
// When used with the default registry, the first call wins and later calls
// return the same observer. Pass WithRegistry to isolate instances (tests,
// multiple managers with separate registries).
func Prometheus(opts ...MetricsOption) *PrometheusObserver {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Registry == prometheus.DefaultRegisterer {
		globalObserverMu.Lock()
		defer globalObserverMu.Unlock()
		if globalObserver == nil {
			globalObserver = newPrometheusObserver(config)
		}
		return globalObserver
	}

	return newPrometheusObserver(config)
}

func newPrometheusObserver(config MetricsConfig) *PrometheusObserver {
	factory := promauto.With(config.Registry)

	return &PrometheusObserver{
		shownTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_shown_total",
			Help:        "Total number of toasts shown",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "position"}),

		dismissedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_dismissed_total",
			Help:        "Total number of toasts dismissed, by removal path",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "position", "reason"}),

		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_active",
			Help:        "Number of currently visible toasts",
			ConstLabels: config.ConstLabels,
		}, []string{"position"}),

		visibleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_visible_duration_seconds",
			Help:        "Time from show to dismissal in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"reason"}),
	}
}

// ToastShown implements toast.Observer.
func (o *PrometheusObserver) ToastShown(rec toast.Record) {
	o.shownTotal.WithLabelValues(string(rec.Type), string(rec.Position)).Inc()
	o.active.WithLabelValues(string(rec.Position)).Inc()
}

// ToastDismissed implements toast.Observer.
func (o *PrometheusObserver) ToastDismissed(rec toast.Record, reason toast.Reason) {
	o.dismissedTotal.WithLabelValues(string(rec.Type), string(rec.Position), string(reason)).Inc()
	o.active.WithLabelValues(string(rec.Position)).Dec()
	o.visibleDuration.WithLabelValues(string(reason)).Observe(time.Since(rec.CreatedAt).Seconds())
}
