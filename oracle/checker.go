package oracle

import (
	"math/rand"
	"strings"
	"time"

	"github.com/snow-ghost/guesser/core"
)

// Checker holds a random secret and answers guesses against it.
// It is not safe for concurrent use.
type Checker struct {
	rng      *rand.Rand
	minLen   int
	maxLen   int
	fixedLen int
	secret   string
	attempts int
}

// Option configures a Checker.
type Option func(*Checker)

// WithRand sets the random source used to draw secrets.
func WithRand(rng *rand.Rand) Option {
	return func(c *Checker) { c.rng = rng }
}

// WithBounds sets the closed range secret lengths are drawn from.
func WithBounds(minLen, maxLen int) Option {
	return func(c *Checker) { c.minLen, c.maxLen = minLen, maxLen }
}

// WithLength pins the secret length instead of drawing it.
func WithLength(n int) Option {
	return func(c *Checker) { c.fixedLen = n }
}

// New creates a Checker with a freshly drawn secret.
func New(opts ...Option) *Checker {
	c := &Checker{minLen: core.DefaultMinLength, maxLen: core.DefaultMaxLength}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c.Regenerate()
	return c
}

// NewWithSecret creates a Checker for a known secret. Regenerate still draws
// from the default bounds.
func NewWithSecret(secret string) *Checker {
	return &Checker{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		minLen: core.DefaultMinLength,
		maxLen: core.DefaultMaxLength,
		secret: secret,
	}
}

func (c *Checker) CheckGuess(guess string) core.Feedback {
	c.attempts++
	return core.Feedback{Matches: MatchCount(guess, c.secret), Exact: guess == c.secret}
}

func (c *Checker) Attempts() int { return c.attempts }

// Reset zeroes the attempt counter and keeps the secret.
func (c *Checker) Reset() { c.attempts = 0 }

// Regenerate draws a new secret and zeroes the attempt counter.
func (c *Checker) Regenerate() {
	n := c.fixedLen
	if n <= 0 {
		n = c.minLen + c.rng.Intn(c.maxLen-c.minLen+1)
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(core.Alphabet[c.rng.Intn(len(core.Alphabet))])
	}
	c.secret = sb.String()
	c.attempts = 0
}

// Secret exposes the hidden string for reporting. Solvers only see core.Oracle.
func (c *Checker) Secret() string { return c.secret }

// MatchCount counts positions where a and b agree over their common length.
func MatchCount(a, b string) int {
	n := min(len(a), len(b))
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return matches
}
