package core

import "fmt"

// LengthPenaltyFitness rewards matched characters and penalises guess length:
//
//	score = MatchWeight*matches / (MaxLength + LengthWeight*len(guess) + Offset)
type LengthPenaltyFitness struct {
	MaxLength    int
	MatchWeight  float64
	LengthWeight float64
	Offset       float64
}

func NewLengthPenaltyFitness(maxLength int) *LengthPenaltyFitness {
	return &LengthPenaltyFitness{MaxLength: maxLength, MatchWeight: 8, LengthWeight: 7, Offset: 1}
}

// Validate checks that scores stay inside [0, 1) for every guess up to MaxLength.
func (f *LengthPenaltyFitness) Validate() error {
	switch {
	case f.MaxLength <= 0:
		return &ConfigError{Field: "max_length", Value: f.MaxLength, Reason: "must be positive"}
	case f.MatchWeight <= 0:
		return &ConfigError{Field: "fitness.match_weight", Value: f.MatchWeight, Reason: "must be positive"}
	case f.LengthWeight < 0:
		return &ConfigError{Field: "fitness.length_weight", Value: f.LengthWeight, Reason: "must not be negative"}
	case f.Offset <= 0:
		return &ConfigError{Field: "fitness.offset", Value: f.Offset, Reason: "must be positive"}
	}
	// worst case is a fully matched guess of MaxLength characters
	if (f.MatchWeight-f.LengthWeight-1)*float64(f.MaxLength) >= f.Offset {
		return &ConfigError{
			Field:  "fitness.match_weight",
			Value:  f.MatchWeight,
			Reason: fmt.Sprintf("score reaches 1 with length_weight=%v offset=%v", f.LengthWeight, f.Offset),
		}
	}
	return nil
}

func (f *LengthPenaltyFitness) Score(matches, guessLen int) float64 {
	return f.MatchWeight * float64(matches) /
		(float64(f.MaxLength) + f.LengthWeight*float64(guessLen) + f.Offset)
}

// Evaluate submits base+candidate to the oracle. It panics with an
// *InvariantError if the guess is too long, the oracle answer contradicts the
// committed base, or the score leaves [0, 1).
func (f *LengthPenaltyFitness) Evaluate(o Oracle, base, candidate string) Outcome {
	guess := base + candidate
	if len(guess) > f.MaxLength {
		invariant("max_length", "guess of %d characters exceeds %d", len(guess), f.MaxLength)
	}

	fb := o.CheckGuess(guess)
	if fb.Exact {
		return Outcome{Kind: OutcomeSolved, Guess: guess, Matches: fb.Matches}
	}
	if fb.Matches < len(base) {
		invariant("base_prefix", "only %d matches for a committed base of %d characters", fb.Matches, len(base))
	}

	score := f.Score(fb.Matches, len(guess))
	if score < 0 || score >= 1 {
		invariant("score_range", "score %v for %d matches over %d characters", score, fb.Matches, len(guess))
	}

	if fb.Matches == len(guess) && len(guess) > len(base) {
		return Outcome{Kind: OutcomePartialLockIn, Guess: candidate, Score: score, Matches: fb.Matches}
	}
	return Outcome{Kind: OutcomeScored, Guess: candidate, Score: score, Matches: fb.Matches}
}
