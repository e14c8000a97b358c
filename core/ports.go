package core

import "context"

// Oracle answers guesses against a hidden secret.
type Oracle interface {
	CheckGuess(guess string) Feedback
	Attempts() int
}

// Solver recovers the secret held by an oracle.
type Solver interface {
	Name() string
	Solve(ctx context.Context, o Oracle) (Solution, error)
}

// FitnessEvaluator scores base+candidate against the oracle.
type FitnessEvaluator interface {
	Evaluate(o Oracle, base, candidate string) Outcome
	Score(matches, guessLen int) float64
}
