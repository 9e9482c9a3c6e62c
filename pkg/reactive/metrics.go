package reactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the collectors created by NewMetrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "reactive").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// FanoutBuckets are the histogram buckets for subscribers per trigger.
	FanoutBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
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

// WithFanoutBuckets sets the fan-out histogram buckets.
func WithFanoutBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.FanoutBuckets = buckets
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
		Namespace:     "reactor",
		Subsystem:     "reactive",
		FanoutBuckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		Registry:      prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors a Runtime reports to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	EffectsCreated  prometheus.Counter
	EffectRuns      prometheus.Counter
	EffectFailures  prometheus.Counter
	EffectsDisposed prometheus.Counter
	Tracks          prometheus.Counter
	Triggers        *prometheus.CounterVec
	ReentrySkips    prometheus.Counter
	Fanout          prometheus.Histogram
}

// NewMetrics creates and registers the engine's collectors:
//   - reactor_reactive_effects_created_total
//   - reactor_reactive_effect_runs_total
//   - reactor_reactive_effect_failures_total
//   - reactor_reactive_effects_disposed_total
//   - reactor_reactive_tracks_total
//   - reactor_reactive_triggers_total{outcome="dispatched"|"untracked"}
//   - reactor_reactive_reentry_skips_total
//   - reactor_reactive_trigger_fanout
//
// Registering twice against the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		EffectsCreated:  counter("effects_created_total", "Total number of effects registered"),
		EffectRuns:      counter("effect_runs_total", "Total number of effect body executions"),
		EffectFailures:  counter("effect_failures_total", "Total number of effect runs that returned an error or panicked"),
		EffectsDisposed: counter("effects_disposed_total", "Total number of disposed effects"),
		Tracks:          counter("tracks_total", "Total number of new effect subscriptions"),
		ReentrySkips:    counter("reentry_skips_total", "Total number of triggers skipped because the effect was running"),

		Triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of writes, by whether any effect was subscribed",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		Fanout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "trigger_fanout",
			Help:        "Subscribed effects per dispatched trigger",
			ConstLabels: config.ConstLabels,
			Buckets:     config.FanoutBuckets,
		}),
	}
}

func (m *Metrics) effectCreated() {
	if m != nil {
		m.EffectsCreated.Inc()
	}
}

func (m *Metrics) effectRun() {
	if m != nil {
		m.EffectRuns.Inc()
	}
}

func (m *Metrics) effectFailed() {
	if m != nil {
		m.EffectFailures.Inc()
	}
}

func (m *Metrics) effectDisposed() {
	if m != nil {
		m.EffectsDisposed.Inc()
	}
}

func (m *Metrics) tracked() {
	if m != nil {
		m.Tracks.Inc()
	}
}

func (m *Metrics) reentrySkipped() {
	if m != nil {
		m.ReentrySkips.Inc()
	}
}

func (m *Metrics) triggered(dispatched bool, fanout int) {
	if m == nil {
		return
	}
	if !dispatched {
		m.Triggers.WithLabelValues("untracked").Inc()
		return
	}
	m.Triggers.WithLabelValues("dispatched").Inc()
	m.Fanout.Observe(float64(fanout))
}
