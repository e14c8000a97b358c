package mutate

import (
	"math/rand"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/worker/candidate"
)

const (
	// CrossoverChildren is the number of crossover offspring per parent pair.
	CrossoverChildren = 6
	// BatchSize is the number of candidates Breed returns.
	BatchSize = CrossoverChildren + 2
)

// Mutator applies per-character substitution and length drift.
type Mutator struct {
	rng          *rand.Rand
	factory      *candidate.Factory
	mutationRate float64
	lengthShift  int
}

// NewMutator validates 0 < mutationRate < 1 and lengthShift > 0.
func NewMutator(rng *rand.Rand, mutationRate float64, lengthShift int) (*Mutator, error) {
	if mutationRate <= 0 || mutationRate >= 1 {
		return nil, &core.ConfigError{Field: "mutation_rate", Value: mutationRate, Reason: "must be in (0, 1)"}
	}
	if lengthShift <= 0 {
		return nil, &core.ConfigError{Field: "length_shift", Value: lengthShift, Reason: "must be positive"}
	}
	return &Mutator{
		rng:          rng,
		factory:      candidate.NewFactory(rng),
		mutationRate: mutationRate,
		lengthShift:  lengthShift,
	}, nil
}

// Mutate returns a new candidate derived from guess with its length clamped
// to [minLen, maxLen].
func (m *Mutator) Mutate(guess string, minLen, maxLen int) string {
	n := len(guess) + m.rng.Intn(2*m.lengthShift+1) - m.lengthShift
	n = max(minLen, min(n, maxLen))

	out := make([]byte, n)
	for i := range out {
		if i < len(guess) && m.rng.Float64() >= m.mutationRate {
			out[i] = guess[i]
			continue
		}
		out[i] = m.factory.Letter()
	}
	return string(out)
}

// Breeder combines parent pairs into offspring.
type Breeder struct {
	rng *rand.Rand
	mut *Mutator
}

func NewBreeder(rng *rand.Rand, mut *Mutator) *Breeder {
	return &Breeder{rng: rng, mut: mut}
}

// Crossover picks every position below the shorter parent's length from either
// parent with equal probability, copies the longer parent beyond that up to a
// random target length, and mutates the result.
func (b *Breeder) Crossover(p1, p2 string, minLen, maxLen int) string {
	shorter, longer := p1, p2
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	target := len(shorter) + b.rng.Intn(len(longer)-len(shorter)+1)

	out := make([]byte, target)
	for i := range out {
		switch {
		case i >= len(shorter):
			out[i] = longer[i]
		case b.rng.Intn(2) == 0:
			out[i] = p1[i]
		default:
			out[i] = p2[i]
		}
	}
	return b.mut.Mutate(string(out), minLen, maxLen)
}

// Breed returns CrossoverChildren crossover offspring followed by one mutant
// of each parent. The batch may contain duplicates.
func (b *Breeder) Breed(p1, p2 string, minLen, maxLen int) []string {
	children := make([]string, 0, BatchSize)
	for i := 0; i < CrossoverChildren; i++ {
		children = append(children, b.Crossover(p1, p2, minLen, maxLen))
	}
	return append(children,
		b.mut.Mutate(p1, minLen, maxLen),
		b.mut.Mutate(p2, minLen, maxLen),
	)
}
