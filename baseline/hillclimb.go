package baseline

import (
	"context"
	"errors"
	"fmt"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/worker/telemetry"
)

var (
	// ErrUnidentifiedCharacter means no alphabet letter raised the match count
	// at a position.
	ErrUnidentifiedCharacter = errors.New("character is not in the alphabet")
	// ErrNotSolved means a solver gave up within its bound.
	ErrNotSolved = errors.New("secret not solved")
)

// placeholder never matches a secret character.
const placeholder = '_'

// HillClimbSolver fixes one position at a time: it probes every letter at
// index i until the match count rises, growing the guess by one placeholder
// whenever all current positions match.
type HillClimbSolver struct {
	MinLength int
	MaxLength int
	Telemetry *telemetry.Telemetry
}

func NewHillClimbSolver(minLength, maxLength int) *HillClimbSolver {
	return &HillClimbSolver{MinLength: minLength, MaxLength: maxLength}
}

func (s *HillClimbSolver) Name() string { return "hillclimb" }

func (s *HillClimbSolver) Solve(ctx context.Context, o core.Oracle) (core.Solution, error) {
	tel := s.Telemetry
	if tel == nil {
		tel = telemetry.NewNop()
	}
	ctx, tr := tel.StartRun(ctx, s.Name())

	sol, err := s.solve(ctx, o)
	tr.End(sol, o.Attempts(), err)
	return sol, err
}

func (s *HillClimbSolver) solve(ctx context.Context, o core.Oracle) (core.Solution, error) {
	guess := make([]byte, s.MinLength)
	for i := range guess {
		guess[i] = placeholder
	}

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return core.Solution{}, fmt.Errorf("hill climb stopped at index %d: %w", i, err)
		}

		fb := o.CheckGuess(string(guess))
		if fb.Exact {
			return core.Solution{Guess: string(guess), Attempts: o.Attempts()}, nil
		}
		if i == s.MaxLength {
			break
		}
		if fb.Matches == len(guess) {
			guess = append(guess, placeholder)
		}

		improved, err := s.improve(o, guess, i, fb.Matches)
		if err != nil {
			return core.Solution{}, err
		}
		guess = improved
	}
	return core.Solution{}, fmt.Errorf("hill climb exhausted %d positions: %w", s.MaxLength, ErrNotSolved)
}

// improve returns guess with the letter at index that adds one match.
func (s *HillClimbSolver) improve(o core.Oracle, guess []byte, index, matches int) ([]byte, error) {
	for j := 0; j < len(core.Alphabet); j++ {
		guess[index] = core.Alphabet[j]
		if fb := o.CheckGuess(string(guess)); fb.Matches == matches+1 {
			return guess, nil
		}
	}
	return nil, fmt.Errorf("index %d: %w", index, ErrUnidentifiedCharacter)
}
