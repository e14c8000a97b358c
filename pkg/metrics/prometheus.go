package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SolverMetrics holds all Prometheus metrics
type SolverMetrics struct {
	// Run metrics
	RunsTotal         *prometheus.CounterVec
	AttemptsHistogram *prometheus.HistogramVec
	DurationHistogram *prometheus.HistogramVec

	// Search metrics
	GenerationsHistogram prometheus.Histogram
	LockInsTotal         prometheus.Counter

	// Oracle cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewSolverMetrics registers solver metrics on reg.
func NewSolverMetrics(reg prometheus.Registerer) *SolverMetrics {
	factory := promauto.With(reg)
	return &SolverMetrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guesser_runs_total",
				Help: "Total number of solver runs",
			},
			[]string{"solver", "status"},
		),

		AttemptsHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guesser_attempts",
				Help:    "Oracle queries needed per solved secret",
				Buckets: prometheus.ExponentialBuckets(16, 2, 12),
			},
			[]string{"solver"},
		),

		DurationHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guesser_solve_duration_seconds",
				Help:    "Wall-clock time per solver run",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"solver"},
		),

		GenerationsHistogram: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guesser_generations",
				Help:    "Generations evaluated per genetic solver run",
				Buckets: prometheus.ExponentialBuckets(4, 2, 12),
			},
		),

		LockInsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "guesser_lock_ins_total",
				Help: "Total number of prefixes locked into a base",
			},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "guesser_oracle_cache_hits_total",
				Help: "Guesses answered from the feedback cache",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "guesser_oracle_cache_misses_total",
				Help: "Guesses forwarded to the oracle",
			},
		),
	}
}

// RecordRun records the outcome of one solver run
func (m *SolverMetrics) RecordRun(solver, status string, attempts int, duration time.Duration) {
	m.RunsTotal.WithLabelValues(solver, status).Inc()
	m.DurationHistogram.WithLabelValues(solver).Observe(duration.Seconds())
	if status == StatusSolved {
		m.AttemptsHistogram.WithLabelValues(solver).Observe(float64(attempts))
	}
}

// RecordGenerations records how many generations a genetic run evaluated
func (m *SolverMetrics) RecordGenerations(n int) {
	m.GenerationsHistogram.Observe(float64(n))
}

// RecordLockIn records a base extension
func (m *SolverMetrics) RecordLockIn() {
	m.LockInsTotal.Inc()
}

// RecordCacheLookup records a feedback cache lookup
func (m *SolverMetrics) RecordCacheLookup(hit bool) {
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

const (
	StatusSolved  = "solved"
	StatusAborted = "aborted"
	StatusFailed  = "failed"
)
