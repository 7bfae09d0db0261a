// Package metrics collects Prometheus metrics for router generation.
//
// Metrics collected:
//   - cannon_routers_generated_total: routers by variant and status
//   - cannon_generation_duration_seconds: generation time by variant
//   - cannon_generation_errors_total: failures by error code
//   - cannon_router_selectors: routed selectors per router
//   - cannon_router_depth: dispatch tree depth per router
//   - cannon_files_written_total: delivered documents by target and result
//
// The CLI exports them with WriteTextfile for the node exporter's textfile
// collector; the dev server serves them on /metrics.
package metrics

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/router"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "cannon").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for generation duration.
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry.
	Registry *prometheus.Registry
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds the generation collectors.
type Metrics struct {
	registry *prometheus.Registry

	generated *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	selectors *prometheus.GaugeVec
	depth     *prometheus.GaugeVec
	written   *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := Config{
		Namespace: "cannon",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		generated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "routers_generated_total",
			Help:        "Total number of router generations",
			ConstLabels: config.ConstLabels,
		}, []string{"variant", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "generation_duration_seconds",
			Help:        "Router generation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"variant"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "generation_errors_total",
			Help:        "Total number of failed generations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		selectors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "router_selectors",
			Help:        "Number of selectors routed by the last generated router",
			ConstLabels: config.ConstLabels,
		}, []string{"router"}),

		depth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "router_depth",
			Help:        "Dispatch tree depth of the last generated router",
			ConstLabels: config.ConstLabels,
		}, []string{"router"}),

		written: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "files_written_total",
			Help:        "Total number of delivered router documents",
			ConstLabels: config.ConstLabels,
		}, []string{"target", "result"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGeneration records a successful generation.
func (m *Metrics) ObserveGeneration(doc *router.Document, elapsed time.Duration) {
	m.generated.WithLabelValues(doc.Variant, "success").Inc()
	m.duration.WithLabelValues(doc.Variant).Observe(elapsed.Seconds())
	m.selectors.WithLabelValues(doc.Name).Set(float64(doc.Selectors))
	m.depth.WithLabelValues(doc.Name).Set(float64(doc.Depth))
}

// ObserveFailure records a failed generation of the given variant.
func (m *Metrics) ObserveFailure(variant string, err error) {
	m.generated.WithLabelValues(variant, "error").Inc()
	m.failures.WithLabelValues(Code(err)).Inc()
}

// ObserveWrite records a delivered document.
func (m *Metrics) ObserveWrite(target string, unchanged bool) {
	result := "written"
	if unchanged {
		result = "unchanged"
	}
	m.written.WithLabelValues(target, result).Inc()
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.New("E150").Wrap(err).WithDetail(path)
	}
	return nil
}

// Code returns the error code used as the failure label. Codes keep the
// label cardinality bounded.
func Code(err error) string {
	var ce *errors.CannonError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return errors.FromGenerate(err).Code
}
