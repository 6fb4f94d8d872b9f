// Package metrics collects Prometheus instruments for the archive control
// plane. A single Metrics value is shared by the conductor, its demuxers,
// and the offload pipeline; a nil *Metrics records nothing, so wiring
// metrics in is optional at every call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures metric registration.
type Config struct {
	// Namespace is the metrics namespace (default: "scribe").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures metric registration.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:   "scribe",
		Subsystem:   "",
		ConstLabels: nil,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Metrics holds the control plane instruments. All recording methods are
// safe on a nil receiver.
type Metrics struct {
	fragmentsTotal      *prometheus.CounterVec
	responsesTotal      *prometheus.CounterVec
	dispatchErrorsTotal *prometheus.CounterVec

	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter

	sessionsActive      prometheus.Gauge
	sessionsOpenedTotal prometheus.Counter
	sessionsClosedTotal *prometheus.CounterVec

	dutyCycleFragments prometheus.Histogram
	workerErrorsTotal  prometheus.Counter

	offloadSegmentsTotal prometheus.Counter
	offloadBytesTotal    prometheus.Counter
	offloadErrorsTotal   prometheus.Counter
}

// New registers the control plane instruments and returns them.
//
// Metrics registered:
//   - scribe_control_fragments_total: Counter of inbound fragments by template
//   - scribe_control_responses_total: Counter of outbound responses by template
//   - scribe_control_dispatch_errors_total: Counter of dispatch failures by kind
//   - scribe_control_connections_active: Gauge of open control connections
//   - scribe_control_connections_total: Counter of control connections accepted
//   - scribe_control_sessions_active: Gauge of live control sessions
//   - scribe_control_sessions_opened_total: Counter of sessions opened
//   - scribe_control_sessions_closed_total: Counter of sessions closed by reason
//   - scribe_control_duty_cycle_fragments: Histogram of fragments per duty cycle
//   - scribe_control_worker_errors_total: Counter of conductor worker errors
//   - scribe_offload_segments_total: Counter of segments offloaded
//   - scribe_offload_bytes_total: Counter of bytes offloaded
//   - scribe_offload_errors_total: Counter of offload failures
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		fragmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_fragments_total",
			Help:        "Total control fragments dispatched, by template",
			ConstLabels: config.ConstLabels,
		}, []string{"template"}),

		responsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_responses_total",
			Help:        "Total control responses published, by template",
			ConstLabels: config.ConstLabels,
		}, []string{"template"}),

		dispatchErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_dispatch_errors_total",
			Help:        "Total control dispatch failures, by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_connections_active",
			Help:        "Number of open control connections",
			ConstLabels: config.ConstLabels,
		}),

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_connections_total",
			Help:        "Total control connections accepted",
			ConstLabels: config.ConstLabels,
		}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_sessions_active",
			Help:        "Number of live control sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsOpenedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_sessions_opened_total",
			Help:        "Total control sessions opened",
			ConstLabels: config.ConstLabels,
		}),

		sessionsClosedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_sessions_closed_total",
			Help:        "Total control sessions closed, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		dutyCycleFragments: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_duty_cycle_fragments",
			Help:        "Fragments handled per conductor duty cycle",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		workerErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "control_worker_errors_total",
			Help:        "Total conductor worker errors",
			ConstLabels: config.ConstLabels,
		}),

		offloadSegmentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "offload_segments_total",
			Help:        "Total recording segments offloaded",
			ConstLabels: config.ConstLabels,
		}),

		offloadBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "offload_bytes_total",
			Help:        "Total bytes offloaded to segment storage",
			ConstLabels: config.ConstLabels,
		}),

		offloadErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "offload_errors_total",
			Help:        "Total segment offload failures",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordFragment counts one dispatched fragment for template.
func (m *Metrics) RecordFragment(template string) {
	if m == nil {
		return
	}
	m.fragmentsTotal.WithLabelValues(template).Inc()
}

// RecordResponse counts one published response for template.
func (m *Metrics) RecordResponse(template string) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(template).Inc()
}

// RecordDispatchError counts one dispatch failure of the given kind.
func (m *Metrics) RecordDispatchError(kind string) {
	if m == nil {
		return
	}
	m.dispatchErrorsTotal.WithLabelValues(kind).Inc()
}

// ConnectionOpened counts a newly accepted control connection.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsActive.Inc()
	m.connectionsTotal.Inc()
}

// ConnectionClosed retires a control connection.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

// SessionOpened counts a newly established control session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.sessionsOpenedTotal.Inc()
}

// SessionClosed retires a control session with the reason it ended.
func (m *Metrics) SessionClosed(reason string) {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
	m.sessionsClosedTotal.WithLabelValues(reason).Inc()
}

// RecordDutyCycle observes the fragment count of one conductor duty cycle.
func (m *Metrics) RecordDutyCycle(fragments int) {
	if m == nil {
		return
	}
	m.dutyCycleFragments.Observe(float64(fragments))
}

// RecordWorkerError counts one conductor worker error.
func (m *Metrics) RecordWorkerError() {
	if m == nil {
		return
	}
	m.workerErrorsTotal.Inc()
}

// RecordOffload counts one offloaded segment of the given size.
func (m *Metrics) RecordOffload(bytes int64) {
	if m == nil {
		return
	}
	m.offloadSegmentsTotal.Inc()
	m.offloadBytesTotal.Add(float64(bytes))
}

// RecordOffloadError counts one segment offload failure.
func (m *Metrics) RecordOffloadError() {
	if m == nil {
		return
	}
	m.offloadErrorsTotal.Inc()
}
