package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/jointown/types"
)

// DefaultNamespace is the metric namespace used when none is given.
const DefaultNamespace = "jointown"

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered on first use, so constructing one
// that is never recorded to leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	steps           *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	persons         *prometheus.GaugeVec
	freeObjects     prometheus.Gauge
	evictions       prometheus.Counter
	personNotFound  prometheus.Counter
	snapshotDropped prometheus.Counter
	chainHops       *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "jointown" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.steps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "steps_total",
			Help:      "Total completed world steps by action (add,remove).",
		}, []string{"action"})

		p.stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "step_duration_seconds",
			Help:      "Duration of world steps in seconds, even-out included.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us .. ~2.6s
		}, []string{"action"})

		p.persons = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "persons",
			Help:      "Current number of persons by tier.",
		}, []string{"tier"})

		p.freeObjects = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "free_objects",
			Help:      "Current number of objects without owner.",
		})

		p.evictions = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "evictions_total",
			Help:      "Total objects taken from lowprio owners by new normal persons.",
		})

		p.personNotFound = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "person_not_found_total",
			Help:      "Total removals of persons present in no tier.",
		})

		p.snapshotDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "world",
			Name:      "snapshot_dropped_total",
			Help:      "Total snapshots dropped because a subscriber was slow.",
		})

		p.chainHops = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "tier",
			Name:      "exchange_chain_hops",
			Help:      "Number of objects moved by each applied exchange chain.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}, []string{"tier"})

		p.reg.MustRegister(p.steps)
		p.reg.MustRegister(p.stepDuration)
		p.reg.MustRegister(p.persons)
		p.reg.MustRegister(p.freeObjects)
		p.reg.MustRegister(p.evictions)
		p.reg.MustRegister(p.personNotFound)
		p.reg.MustRegister(p.snapshotDropped)
		p.reg.MustRegister(p.chainHops)
	})
}

// WorldMetrics implementation

// RecordStep counts a step and observes its duration.
func (p *PrometheusCollector) RecordStep(action string, duration float64) {
	p.ensureRegistered()
	p.steps.WithLabelValues(action).Inc()
	p.stepDuration.WithLabelValues(action).Observe(duration)
}

// RecordPersons sets the member count of a tier.
func (p *PrometheusCollector) RecordPersons(tier types.Tier, count int) {
	p.ensureRegistered()
	p.persons.WithLabelValues(tier.String()).Set(float64(count))
}

// RecordFreeObjects sets the number of free objects.
func (p *PrometheusCollector) RecordFreeObjects(count int) {
	p.ensureRegistered()
	p.freeObjects.Set(float64(count))
}

// RecordEvictions adds count evicted objects.
func (p *PrometheusCollector) RecordEvictions(count int) {
	if count <= 0 {
		return
	}
	p.ensureRegistered()
	p.evictions.Add(float64(count))
}

// RecordPersonNotFound counts a removal of an unknown person.
func (p *PrometheusCollector) RecordPersonNotFound() {
	p.ensureRegistered()
	p.personNotFound.Inc()
}

// RecordSnapshotDropped counts a snapshot dropped for a slow subscriber.
func (p *PrometheusCollector) RecordSnapshotDropped() {
	p.ensureRegistered()
	p.snapshotDropped.Inc()
}

// TierMetrics implementation

// RecordExchangeChain observes the length of an applied exchange chain.
func (p *PrometheusCollector) RecordExchangeChain(tier types.Tier, hops int) {
	p.ensureRegistered()
	p.chainHops.WithLabelValues(tier.String()).Observe(float64(hops))
}
