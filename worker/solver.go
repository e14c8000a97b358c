// worker/solver.go
package worker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/oracle"
	"github.com/snow-ghost/guesser/worker/candidate"
	"github.com/snow-ghost/guesser/worker/mutate"
	"github.com/snow-ghost/guesser/worker/selection"
	"github.com/snow-ghost/guesser/worker/telemetry"
)

// GeneticSolver recovers a secret with a population of candidate suffixes,
// locking correct prefixes into a base as soon as the oracle proves them.
// It is not safe for concurrent use.
type GeneticSolver struct {
	config    Config
	popSize   int
	rng       *rand.Rand
	factory   *candidate.Factory
	breeder   *mutate.Breeder
	selector  *selection.Selector
	fitness   core.FitnessEvaluator
	telemetry *telemetry.Telemetry
}

// Option configures a GeneticSolver.
type Option func(*GeneticSolver)

// WithRand injects the random source; it overrides Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *GeneticSolver) { s.rng = rng }
}

// WithTelemetry sets where run events are reported.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *GeneticSolver) { s.telemetry = t }
}

// NewGeneticSolver validates config and wires the search components.
func NewGeneticSolver(config Config, opts ...Option) (*GeneticSolver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &GeneticSolver{
		config:    config,
		popSize:   config.PopulationSize(),
		telemetry: telemetry.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}

	mut, err := mutate.NewMutator(s.rng, config.MutationRate, config.LengthShift)
	if err != nil {
		return nil, err
	}
	sel, err := selection.NewSelector(s.rng, s.popSize, config.SurvivalRate, config.RandomSurvivalRate)
	if err != nil {
		return nil, err
	}

	s.factory = candidate.NewFactory(s.rng)
	s.breeder = mutate.NewBreeder(s.rng, mut)
	s.selector = sel
	s.fitness = config.fitness()
	return s, nil
}

func (s *GeneticSolver) Name() string { return "genetic" }

// PopulationSize is the generation size used for every run.
func (s *GeneticSolver) PopulationSize() int { return s.popSize }

// Solve runs generations until the oracle reports an exact match. The context
// is checked between generations only.
func (s *GeneticSolver) Solve(ctx context.Context, o core.Oracle) (core.Solution, error) {
	ctx, tr := s.telemetry.StartRun(ctx, s.Name())

	o, err := s.wrapOracle(o)
	if err != nil {
		tr.End(core.Solution{}, 0, err)
		return core.Solution{}, err
	}

	r := s.newRun(o, tr)
	for {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("genetic solver stopped after %d attempts: %w", o.Attempts(), err)
			tr.End(core.Solution{}, o.Attempts(), err)
			return core.Solution{}, err
		}
		if solved, ok := r.step(); ok {
			sol := core.Solution{Guess: solved, Attempts: o.Attempts()}
			tr.End(sol, sol.Attempts, nil)
			return sol, nil
		}
	}
}

// wrapOracle applies the per-run feedback cache and query throttle.
func (s *GeneticSolver) wrapOracle(o core.Oracle) (core.Oracle, error) {
	if s.config.QueryRate > 0 {
		o = oracle.NewRateLimited(o, s.config.QueryRate, 1)
	}
	if s.config.CacheSize > 0 {
		cached, err := oracle.NewCached(o, s.config.CacheSize)
		if err != nil {
			return nil, err
		}
		if m := s.telemetry.Metrics(); m != nil {
			cached.OnLookup = m.RecordCacheLookup
		}
		o = cached
	}
	return o, nil
}
