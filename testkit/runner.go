package testkit

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/oracle"
)

// SolverFactory builds a fresh solver for one trial. Solvers own their random
// source and are not shared between goroutines.
type SolverFactory func(seed int64) core.Solver

// Trial is the result of solving one secret.
type Trial struct {
	Index    int
	Secret   string
	Solution core.Solution
	Attempts int
	Duration time.Duration
	Err      error
}

// Solved reports whether the trial recovered its secret.
func (t Trial) Solved() bool {
	return t.Err == nil && t.Solution.Guess == t.Secret
}

// Report aggregates the trials of one solver.
type Report struct {
	Solver string
	Trials []Trial
}

// Summary holds attempt statistics over solved trials.
type Summary struct {
	Solved int
	Failed int
	Mean   float64
	Median int
	P95    int
	Max    int
}

func (r Report) Summary() Summary {
	var s Summary
	attempts := make([]int, 0, len(r.Trials))
	for _, t := range r.Trials {
		if !t.Solved() {
			s.Failed++
			continue
		}
		s.Solved++
		attempts = append(attempts, t.Attempts)
	}
	if len(attempts) == 0 {
		return s
	}

	slices.Sort(attempts)
	total := 0
	for _, a := range attempts {
		total += a
	}
	s.Mean = float64(total) / float64(len(attempts))
	s.Median = attempts[len(attempts)/2]
	s.P95 = attempts[min(len(attempts)-1, len(attempts)*95/100)]
	s.Max = attempts[len(attempts)-1]
	return s
}

// Runner solves fresh random secrets with a solver and collects the results.
type Runner struct {
	Trials    int
	Parallel  int
	Seed      int64
	MinLength int
	MaxLength int
	// Timeout bounds each trial when positive.
	Timeout time.Duration
}

func NewRunner(trials int, seed int64) *Runner {
	return &Runner{
		Trials:    trials,
		Parallel:  1,
		Seed:      seed,
		MinLength: core.DefaultMinLength,
		MaxLength: core.DefaultMaxLength,
	}
}

// Run executes every trial. Trial failures are recorded in the report; the
// returned error is only set when ctx ends before all trials ran.
func (r *Runner) Run(ctx context.Context, name string, newSolver SolverFactory) (Report, error) {
	trials := make([]Trial, r.Trials)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Parallel))
	for i := range trials {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			trials[i] = r.runTrial(ctx, i, newSolver)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{Solver: name, Trials: trials}, err
	}
	return Report{Solver: name, Trials: trials}, nil
}

func (r *Runner) runTrial(ctx context.Context, i int, newSolver SolverFactory) Trial {
	seed := r.Seed + int64(i)
	checker := oracle.New(
		oracle.WithRand(rand.New(rand.NewSource(seed))),
		oracle.WithBounds(r.MinLength, r.MaxLength),
	)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	// the solver must not replay the stream that drew the secret
	start := time.Now()
	sol, err := newSolver(^seed).Solve(ctx, checker)
	return Trial{
		Index:    i,
		Secret:   checker.Secret(),
		Solution: sol,
		Attempts: checker.Attempts(),
		Duration: time.Since(start),
		Err:      err,
	}
}
