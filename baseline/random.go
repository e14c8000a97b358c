package baseline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/worker/candidate"
	"github.com/snow-ghost/guesser/worker/telemetry"
)

// RandomSolver guesses random strings of random length until one is exact.
type RandomSolver struct {
	MinLength int
	MaxLength int
	// MaxAttempts stops the search when positive.
	MaxAttempts int
	Telemetry   *telemetry.Telemetry

	factory *candidate.Factory
}

func NewRandomSolver(rng *rand.Rand, minLength, maxLength int) *RandomSolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomSolver{
		MinLength: minLength,
		MaxLength: maxLength,
		factory:   candidate.NewFactory(rng),
	}
}

func (s *RandomSolver) Name() string { return "random" }

func (s *RandomSolver) Solve(ctx context.Context, o core.Oracle) (core.Solution, error) {
	tel := s.Telemetry
	if tel == nil {
		tel = telemetry.NewNop()
	}
	ctx, tr := tel.StartRun(ctx, s.Name())

	sol, err := s.solve(ctx, o)
	tr.End(sol, o.Attempts(), err)
	return sol, err
}

func (s *RandomSolver) solve(ctx context.Context, o core.Oracle) (core.Solution, error) {
	for n := 0; s.MaxAttempts <= 0 || n < s.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return core.Solution{}, fmt.Errorf("random guessing stopped after %d guesses: %w", n, err)
		}
		guess := s.factory.Create(s.factory.RandomLength(s.MinLength, s.MaxLength))
		if o.CheckGuess(guess).Exact {
			return core.Solution{Guess: guess, Attempts: o.Attempts()}, nil
		}
	}
	return core.Solution{}, fmt.Errorf("random guessing gave up after %d guesses: %w", s.MaxAttempts, ErrNotSolved)
}
