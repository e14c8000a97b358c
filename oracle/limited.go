package oracle

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/snow-ghost/guesser/core"
)

// RateLimited throttles guesses to emulate a checker with a query quota.
type RateLimited struct {
	next    core.Oracle
	limiter *rate.Limiter
	waited  time.Duration
}

// NewRateLimited allows qps guesses per second with the given burst.
func NewRateLimited(next core.Oracle, qps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(qps), burst)}
}

func (r *RateLimited) CheckGuess(guess string) core.Feedback {
	res := r.limiter.Reserve()
	if d := res.Delay(); d > 0 {
		r.waited += d
		time.Sleep(d)
	}
	return r.next.CheckGuess(guess)
}

func (r *RateLimited) Attempts() int { return r.next.Attempts() }

// Waited returns the total time spent throttled.
func (r *RateLimited) Waited() time.Duration { return r.waited }

func (r *RateLimited) Reset() {
	if rs, ok := r.next.(Resettable); ok {
		rs.Reset()
	}
}

func (r *RateLimited) Regenerate() {
	if rs, ok := r.next.(Resettable); ok {
		rs.Regenerate()
	}
}
