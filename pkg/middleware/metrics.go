package middleware

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for initialization duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the store collectors of one registry.
type Metrics struct {
	initsTotal   *prometheus.CounterVec
	initDuration *prometheus.HistogramVec
	initErrors   *prometheus.CounterVec
	activeStores prometheus.Gauge
}

// metricsKey identifies a metric set. Registering the same names twice on
// one registry panics, so sets are shared per registry and naming.
type metricsKey struct {
	registry  prometheus.Registerer
	namespace string
	subsystem string
}

var (
	metricsMu  sync.Mutex
	metricsSet = map[metricsKey]*Metrics{}
)

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		initsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_inits_total",
			Help:        "Total number of store initializations",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "status"}),

		initDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_init_duration_seconds",
			Help:        "Store initialization duration in seconds, hooks included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		initErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_init_errors_total",
			Help:        "Total number of failed store initializations",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "error_type"}),

		activeStores: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_stores",
			Help:        "Number of scoped stores whose owner has not been disposed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// NewMetrics returns the metric set for the configured registry, creating
// and registering it on first use.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	key := metricsKey{registry: config.Registry, namespace: config.Namespace, subsystem: config.Subsystem}

	metricsMu.Lock()
	defer metricsMu.Unlock()
	m, ok := metricsSet[key]
	if !ok {
		m = initMetrics(config)
		metricsSet[key] = m
	}
	return m
}

// Prometheus creates an observer that records store initialization metrics.
//
// The store label is the definition name rather than the identifier, which
// keeps label cardinality bounded when ids are used. Stores initialized in a
// scope count as active until the scope is disposed; standalone stores are
// not counted.
//
// Example:
//
//	app := vstore.New(vstore.Config{
//	    Observers: []store.Observer{
//	        middleware.Prometheus(middleware.WithNamespace("shop")),
//	    },
//	})
func Prometheus(opts ...MetricsOption) store.Observer {
	return NewMetrics(opts...)
}

type startKey struct{}

// InitStart implements store.Observer.
func (m *Metrics) InitStart(ctx context.Context, info store.InitInfo) context.Context {
	return context.WithValue(ctx, startKey{}, time.Now())
}

// InitEnd implements store.Observer.
func (m *Metrics) InitEnd(ctx context.Context, info store.InitInfo, err error) {
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		m.initDuration.WithLabelValues(info.Name).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		m.initErrors.WithLabelValues(info.Name, categorizeError(err)).Inc()
		m.initsTotal.WithLabelValues(info.Name, "error").Inc()
		return
	}
	m.initsTotal.WithLabelValues(info.Name, "success").Inc()

	if info.Owner != nil {
		m.activeStores.Inc()
		info.Owner.OnCleanup(m.activeStores.Dec)
	}
}

// categorizeError returns the error code of structured errors and
// "internal" otherwise. This prevents high-cardinality labels from error
// messages.
func categorizeError(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "internal"
}
