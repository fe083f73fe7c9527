package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/pattern"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "deeplink").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for resolution duration.
	// Resolution is fast and in-memory, so the default buckets start at
	// 10µs.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
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
		Namespace: "deeplink",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Resolution outcomes used as label values.
const (
	outcomeMatched   = "matched"
	outcomeUnmatched = "unmatched"
	outcomeError     = "error"
)

// Metrics holds the Prometheus collectors for link resolution.
type Metrics struct {
	resolutions  *prometheus.CounterVec
	duration     prometheus.Histogram
	routes       *prometheus.CounterVec
	compilations *prometheus.CounterVec
}

// NewMetrics registers the deep-link collectors.
//
// Metrics collected:
//   - deeplink_resolutions_total: resolutions by outcome (matched, unmatched, error)
//   - deeplink_resolution_duration_seconds: resolution latency
//   - deeplink_routes_total: materialized routes by kind (profile, post)
//   - deeplink_pattern_compilations_total: pattern list compilations by family and status
//
// Example:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("flare"))
//	svc := deeplink.NewService(src,
//	    deeplink.WithRegistry(deeplink.NewRegistry(nil, deeplink.WithCompileHook(m.CompileHook()))),
//	    deeplink.WithMiddleware(m.Middleware()),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "Total number of links resolved, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolution_duration_seconds",
			Help:        "Link resolution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		routes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_total",
			Help:        "Total number of navigation targets produced, by route kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		compilations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pattern_compilations_total",
			Help:        "Total number of pattern list compilations, by family and status",
			ConstLabels: config.ConstLabels,
		}, []string{"family", "status"}),
	}
}

// Middleware returns resolution middleware recording outcome, latency and
// route kinds. Labels never carry the URL itself.
func (m *Metrics) Middleware() deeplink.Middleware {
	return func(next deeplink.Handler) deeplink.Handler {
		return func(ctx context.Context, res *deeplink.Resolution) error {
			start := time.Now()
			err := next(ctx, res)
			m.duration.Observe(time.Since(start).Seconds())

			switch {
			case err != nil:
				m.resolutions.WithLabelValues(outcomeError).Inc()
			case res.Matched():
				m.resolutions.WithLabelValues(outcomeMatched).Inc()
			default:
				m.resolutions.WithLabelValues(outcomeUnmatched).Inc()
			}
			for _, r := range res.Routes {
				m.routes.WithLabelValues(r.Kind().String()).Inc()
			}
			return err
		}
	}
}

// CompileHook returns a registry hook counting pattern compilations.
func (m *Metrics) CompileHook() deeplink.CompileHook {
	return func(b deeplink.Binding, err error) {
		status := "ok"
		if err != nil {
			status = categorizeError(err)
		}
		m.compilations.WithLabelValues(b.Family.String(), status).Inc()
	}
}

// categorizeError returns a low-cardinality label for a compile error.
func categorizeError(err error) string {
	var compileErr *pattern.CompileError
	if errors.As(err, &compileErr) {
		return "invalid_template"
	}
	return "error"
}
