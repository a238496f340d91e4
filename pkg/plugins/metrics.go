package plugins

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

// MetricsConfig configures the Prometheus plugin.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "rxstate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "statestream").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for update duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus plugin.
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
		Namespace: "rxstate",
		Subsystem: "statestream",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors fed by metered streams.
type Metrics struct {
	updatesTotal   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	emitsTotal     *prometheus.CounterVec
	runnersTotal   *prometheus.CounterVec
	activeStreams  prometheus.Gauge
	disposedTotal  prometheus.Counter
}

// Update results used as the "result" label.
const (
	resultApplied = "applied"
	resultDropped = "dropped"
	resultError   = "error"
	resultOK      = "ok"
)

// NewMetrics registers the collectors with the configured registry.
// Registering twice with the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of Next calls by stream and result",
			ConstLabels: config.ConstLabels,
		}, []string{"stream", "result"}),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_duration_seconds",
			Help:        "Time spent in Next, including subscriber notification",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"stream"}),

		emitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "emits_total",
			Help:        "Total number of emitter calls by stream and emitter",
			ConstLabels: config.ConstLabels,
		}, []string{"stream", "emitter"}),

		runnersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_runners_total",
			Help:        "Total number of event runners started by stream and result",
			ConstLabels: config.ConstLabels,
		}, []string{"stream", "result"}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_streams",
			Help:        "Number of constructed, not yet disposed streams",
			ConstLabels: config.ConstLabels,
		}),

		disposedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "disposed_total",
			Help:        "Total number of disposed streams",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Plugin returns a plugin that wraps every new stream so it reports to m.
func (m *Metrics) Plugin() *statestream.Plugin {
	return statestream.NewPlugin("prometheus", func(s statestream.Stream) statestream.Stream {
		m.activeStreams.Inc()
		return &meteredStream{Stream: s, metrics: m}
	})
}

// globalMetrics backs Prometheus. Created on first use.
var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// Prometheus returns a plugin reporting to process-wide metrics, created on
// the first call with the given options. Later calls reuse them.
//
// Metrics collected:
//   - rxstate_statestream_updates_total{stream,result}
//   - rxstate_statestream_update_duration_seconds{stream}
//   - rxstate_statestream_emits_total{stream,emitter}
//   - rxstate_statestream_event_runners_total{stream,result}
//   - rxstate_statestream_active_streams
//   - rxstate_statestream_disposed_total
//
// Example:
//
//	statestream.Setup(statestream.SetupOptions{
//	    Primitive: observable.Basic{},
//	    Plugins:   []*statestream.Plugin{plugins.Prometheus()},
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) *statestream.Plugin {
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(opts...)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return m.Plugin()
}

// GetMetrics returns the process-wide metrics, or nil before Prometheus
// has been called.
func GetMetrics() *Metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// meteredStream reports every update, emit, runner and disposal.
type meteredStream struct {
	statestream.Stream
	metrics *Metrics
}

func (s *meteredStream) Next(updater statestream.Updater) error {
	name := s.Name()
	if s.Disposed() {
		s.metrics.updatesTotal.WithLabelValues(name, resultDropped).Inc()
		return s.Stream.Next(updater)
	}

	start := time.Now()
	err := s.Stream.Next(updater)
	s.metrics.updateDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	result := resultApplied
	if err != nil {
		result = resultError
	}
	s.metrics.updatesTotal.WithLabelValues(name, result).Inc()
	return err
}

func (s *meteredStream) Emit(name string, args ...any) error {
	s.metrics.emitsTotal.WithLabelValues(s.Name(), name).Inc()
	return s.Stream.Emit(name, args...)
}

func (s *meteredStream) EventRunner(factory statestream.Factory, input ...any) (observable.Observable, error) {
	out, err := s.Stream.EventRunner(factory, input...)
	result := resultOK
	if err != nil {
		result = resultError
	}
	s.metrics.runnersTotal.WithLabelValues(s.Name(), result).Inc()
	return out, err
}

func (s *meteredStream) Dispose() {
	if !s.Disposed() {
		s.metrics.activeStreams.Dec()
		s.metrics.disposedTotal.Inc()
	}
	s.Stream.Dispose()
}
