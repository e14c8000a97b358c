package worker

import (
	"fmt"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/worker/selection"
	"github.com/snow-ghost/guesser/worker/telemetry"
)

// maxDrawRounds bounds the search for distinct strings when the length budget
// is too narrow to supply a full population.
const maxDrawRounds = 64

// run is the state of one Solve call.
type run struct {
	s      *GeneticSolver
	oracle core.Oracle
	tr     *telemetry.Run

	base       string
	children   []string
	prevScores []core.Scored
	best       *core.Scored
}

func (s *GeneticSolver) newRun(o core.Oracle, tr *telemetry.Run) *run {
	r := &run{s: s, oracle: o, tr: tr}
	lo, hi := r.lengthBounds()
	r.children = r.fill(nil, make(map[string]struct{}, s.popSize), lo, hi)
	return r
}

// lengthBounds is the range of suffix lengths that keeps base+suffix inside
// [MinLength, MaxLength].
func (r *run) lengthBounds() (int, int) {
	return max(1, r.s.config.MinLength-len(r.base)), r.s.config.MaxLength - len(r.base)
}

// fill tops children up to the population size with distinct random strings.
func (r *run) fill(children []string, seen map[string]struct{}, lo, hi int) []string {
	for tries := 0; len(children) < r.s.popSize && tries < r.s.popSize*maxDrawRounds; tries++ {
		c := r.s.factory.Create(r.s.factory.RandomLength(lo, hi))
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		children = append(children, c)
	}
	return children
}

// step evaluates the current generation and breeds the next one. It returns
// the full solved string and true once the oracle reports an exact match.
func (r *run) step() (string, bool) {
	scores := make([]core.Scored, 0, len(r.children))
	for _, c := range r.children {
		out := r.s.fitness.Evaluate(r.oracle, r.base, c)
		switch out.Kind {
		case core.OutcomeSolved:
			return out.Guess, true
		case core.OutcomePartialLockIn:
			r.lockIn(out)
			return "", false
		}
		scores = append(scores, core.Scored{Guess: c, Score: out.Score})
	}

	pools := [][]core.Scored{scores, r.prevScores}
	if r.best != nil {
		pools = append(pools, []core.Scored{*r.best})
	}
	ranked := selection.Rank(pools...)
	r.best = &ranked[0]
	r.tr.Generation(len(r.children), len(r.base), r.best.Score)

	r.children = r.breed(r.s.selector.Select(ranked))
	r.prevScores = scores
	return "", false
}

// breed consumes parents two at a time, falling back to the top two once the
// list runs out, until the next generation is full.
func (r *run) breed(parents []string) []string {
	lo, hi := r.lengthBounds()
	popSize := r.s.popSize
	seen := make(map[string]struct{}, popSize)
	next := make([]string, 0, popSize+len(parents)*4)

	top1, top2 := parents[0], parents[min(1, len(parents)-1)]
	i := 0
	for fallbacks := 0; len(next) < popSize && fallbacks < maxDrawRounds; {
		p1, p2 := top1, top2
		if i+1 < len(parents) {
			p1, p2 = parents[i], parents[i+1]
			i += 2
		} else {
			fallbacks++
		}
		for _, c := range r.s.breeder.Breed(p1, p2, lo, hi) {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			next = append(next, c)
		}
	}

	if len(next) > popSize {
		r.s.rng.Shuffle(len(next), func(a, b int) { next[a], next[b] = next[b], next[a] })
		next = next[:popSize]
	}
	return next
}

// lockIn commits a fully matched suffix to the base and re-expresses the
// generation relative to the longer base.
func (r *run) lockIn(out core.Outcome) {
	suffix := out.Guess
	r.base += suffix
	if len(r.base) >= r.s.config.MaxLength {
		panic(&core.InvariantError{
			Invariant: "max_length",
			Detail:    fmt.Sprintf("locked base of %d characters leaves no room below %d", len(r.base), r.s.config.MaxLength),
		})
	}

	lo, hi := r.lengthBounds()
	seen := make(map[string]struct{}, r.s.popSize)
	children := make([]string, 0, r.s.popSize)
	for _, c := range r.children {
		if len(c) <= len(suffix) {
			continue
		}
		c = c[len(suffix):]
		if _, dup := seen[c]; dup || len(c) < lo || len(c) > hi {
			continue
		}
		seen[c] = struct{}{}
		children = append(children, c)
	}
	r.children = r.fill(children, seen, lo, hi)

	r.prevScores = nil
	r.best = &core.Scored{Guess: "", Score: out.Score}
	r.tr.LockIn(len(suffix), len(r.base), r.oracle.Attempts(), out.Score)
}
