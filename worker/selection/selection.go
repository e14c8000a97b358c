package selection

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"

	"github.com/snow-ghost/guesser/core"
)

// Selector picks breeding parents: the elite unconditionally plus a random
// sample of the remainder.
type Selector struct {
	rng         *rand.Rand
	eliteCount  int
	randomCount int
}

// NewSelector validates the survival rates against the population size.
func NewSelector(rng *rand.Rand, populationSize int, survivalRate, randomSurvivalRate float64) (*Selector, error) {
	if survivalRate <= 0 || survivalRate >= 1 {
		return nil, &core.ConfigError{Field: "survival_rate", Value: survivalRate, Reason: "must be in (0, 1)"}
	}
	if randomSurvivalRate <= 0 || randomSurvivalRate >= 1-survivalRate {
		return nil, &core.ConfigError{
			Field:  "random_survival_rate",
			Value:  randomSurvivalRate,
			Reason: fmt.Sprintf("must be in (0, %v)", 1-survivalRate),
		}
	}

	elite := max(2, int(float64(populationSize)*survivalRate))
	random := max(1, int(float64(populationSize)*randomSurvivalRate))
	if elite+random >= populationSize {
		return nil, &core.ConfigError{
			Field:  "population_size",
			Value:  populationSize,
			Reason: fmt.Sprintf("must exceed %d elite + %d random parents", elite, random),
		}
	}
	return &Selector{rng: rng, eliteCount: elite, randomCount: random}, nil
}

func (s *Selector) EliteCount() int  { return s.eliteCount }
func (s *Selector) RandomCount() int { return s.randomCount }

// Rank merges score lists into one descending ranking. Entries with the same
// guess keep their highest score; ties are ordered by guess.
func Rank(pools ...[]core.Scored) []core.Scored {
	best := make(map[string]float64)
	for _, pool := range pools {
		for _, sc := range pool {
			if cur, ok := best[sc.Guess]; !ok || sc.Score > cur {
				best[sc.Guess] = sc.Score
			}
		}
	}

	ranked := make([]core.Scored, 0, len(best))
	for guess, score := range best {
		ranked = append(ranked, core.Scored{Guess: guess, Score: score})
	}
	slices.SortFunc(ranked, func(a, b core.Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Guess, b.Guess)
	})
	return ranked
}

// Select returns parents from a ranking produced by Rank: the elite in rank
// order followed by the random survivors.
func (s *Selector) Select(ranked []core.Scored) []string {
	elite := min(s.eliteCount, len(ranked))
	parents := make([]string, 0, elite+s.randomCount)
	for _, sc := range ranked[:elite] {
		parents = append(parents, sc.Guess)
	}

	rest := ranked[elite:]
	picks := min(s.randomCount, len(rest))
	for _, i := range s.rng.Perm(len(rest))[:picks] {
		parents = append(parents, rest[i].Guess)
	}
	return parents
}
