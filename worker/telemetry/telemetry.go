package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/pkg/logging"
	"github.com/snow-ghost/guesser/pkg/metrics"
	"github.com/snow-ghost/guesser/pkg/tracing"
)

// Telemetry fans solver events out to logs, Prometheus and traces.
// Metrics may be nil.
type Telemetry struct {
	logger  *logging.Logger
	metrics *metrics.SolverMetrics
	tracer  *tracing.Tracer
}

// New creates telemetry; nil logger and tracer fall back to no-ops.
func New(logger *logging.Logger, m *metrics.SolverMetrics, tracer *tracing.Tracer) *Telemetry {
	if logger == nil {
		logger = logging.NewNop()
	}
	if tracer == nil {
		tracer = tracing.NewNoop()
	}
	return &Telemetry{logger: logger, metrics: m, tracer: tracer}
}

// NewNop returns telemetry that records nothing.
func NewNop() *Telemetry { return New(nil, nil, nil) }

func (t *Telemetry) Logger() *logging.Logger { return t.logger }

func (t *Telemetry) Metrics() *metrics.SolverMetrics { return t.metrics }

// Run tracks a single Solve call.
type Run struct {
	ID          string
	t           *Telemetry
	solver      string
	logger      *logging.Logger
	span        trace.Span
	start       time.Time
	generations int
	lockIns     int
}

// StartRun opens the span and logger scope of a solver run.
func (t *Telemetry) StartRun(ctx context.Context, solver string) (context.Context, *Run) {
	id := uuid.NewString()
	ctx, span := t.tracer.StartSolveSpan(ctx, solver, id)
	r := &Run{
		ID:     id,
		t:      t,
		solver: solver,
		logger: t.logger.WithRunID(id).With("solver", solver),
		span:   span,
		start:  time.Now(),
	}
	r.logger.Debug("solve started")
	return ctx, r
}

// Generation logs a finished generation pass.
func (r *Run) Generation(population, baseLen int, bestScore float64) {
	r.generations++
	r.logger.LogGeneration(r.generations, population, baseLen, bestScore)
}

// LockIn records a base extension.
func (r *Run) LockIn(suffixLen, baseLen, attempts int, score float64) {
	r.lockIns++
	r.logger.LogLockIn(suffixLen, baseLen, attempts, score)
	tracing.AddLockInEvent(r.span, suffixLen, baseLen, attempts)
	if r.t.metrics != nil {
		r.t.metrics.RecordLockIn()
	}
}

func (r *Run) Generations() int { return r.generations }

func (r *Run) LockIns() int { return r.lockIns }

// End closes the run. attempts is read from the oracle by the caller so
// aborted runs still report the queries they spent.
func (r *Run) End(sol core.Solution, attempts int, err error) {
	defer r.span.End()
	duration := time.Since(r.start)
	r.logger.LogSolve(r.solver, attempts, r.generations, r.lockIns, duration, err)

	status := metrics.StatusSolved
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = metrics.StatusAborted
	case err != nil:
		status = metrics.StatusFailed
	}
	if err != nil {
		tracing.RecordSpanError(r.span, err)
	} else {
		tracing.RecordSpanResult(r.span, sol.Attempts, r.generations)
	}

	if r.t.metrics != nil {
		r.t.metrics.RecordRun(r.solver, status, attempts, duration)
		if r.generations > 0 {
			r.t.metrics.RecordGenerations(r.generations)
		}
	}
}
