package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled turns metric collection on.
	Enabled bool

	// Namespace is the Prometheus namespace. Default: "calibra"
	Namespace string
}

// Collector owns the engine's Prometheus metrics. A nil *Collector is a
// valid no-op receiver.
type Collector struct {
	registry *prometheus.Registry

	operationsTotal      *prometheus.CounterVec
	scoreDuration        prometheus.Histogram
	compositeDowngrades  prometheus.Counter
	closuresBlocked      prometheus.Counter
	closureBlockers      prometheus.Histogram
	reconcileCorrections prometheus.Counter
}

// NewCollector creates a metrics collector registered against the given
// registry. If registry is nil a fresh one is created.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if !cfg.Enabled {
		return nil
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "calibra"
	}

	c := &Collector{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "operations_total",
			Help:      "Engine operations by operation name and outcome.",
		}, []string{"operation", "outcome"}),
		scoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "score_compute_duration_seconds",
			Help:      "Time spent computing audit scores.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		compositeDowngrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "composite_downgrades_total",
			Help:      "Composite parent answers auto-downgraded by sub-answer writes.",
		}),
		closuresBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "closures_blocked_total",
			Help:      "Close attempts rejected with outstanding blockers.",
		}),
		closureBlockers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "closure_blockers",
			Help:      "Number of blockers reported per closure evaluation.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		reconcileCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "reconcile_corrections_total",
			Help:      "Cached star levels corrected by the reconciler.",
		}),
	}

	registry.MustRegister(
		c.operationsTotal,
		c.scoreDuration,
		c.compositeDowngrades,
		c.closuresBlocked,
		c.closureBlockers,
		c.reconcileCorrections,
	)

	return c
}

// Registry returns the underlying Prometheus registry, or nil for a no-op
// collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordOperation counts one engine operation and its outcome.
func (c *Collector) RecordOperation(operation string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordScoreComputed observes one score computation.
func (c *Collector) RecordScoreComputed(d time.Duration) {
	if c == nil {
		return
	}
	c.scoreDuration.Observe(d.Seconds())
}

// RecordCompositeDowngrade counts one parent auto-downgrade.
func (c *Collector) RecordCompositeDowngrade() {
	if c == nil {
		return
	}
	c.compositeDowngrades.Inc()
}

// RecordClosureBlocked counts one rejected close attempt.
func (c *Collector) RecordClosureBlocked() {
	if c == nil {
		return
	}
	c.closuresBlocked.Inc()
}

// RecordClosureEvaluated observes the blocker count of one evaluation.
func (c *Collector) RecordClosureEvaluated(blockers int) {
	if c == nil {
		return
	}
	c.closureBlockers.Observe(float64(blockers))
}

// RecordReconcileCorrection counts one star-level correction.
func (c *Collector) RecordReconcileCorrection() {
	if c == nil {
		return
	}
	c.reconcileCorrections.Inc()
}
