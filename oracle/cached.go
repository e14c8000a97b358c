package oracle

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/snow-ghost/guesser/core"
)

// Resettable is implemented by oracles that support Reset and Regenerate.
type Resettable interface {
	core.Oracle
	Reset()
	Regenerate()
}

// CacheStats counts memo lookups.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// Cached memoises feedback per guess so repeated guesses never reach the
// wrapped oracle. Attempts reports queries the wrapped oracle actually served.
type Cached struct {
	next  core.Oracle
	cache *lru.Cache[string, core.Feedback]
	stats CacheStats

	// OnLookup, when set, is called after every lookup with hit=true for
	// guesses answered from the cache.
	OnLookup func(hit bool)
}

// NewCached wraps next with an LRU memo holding up to size guesses.
func NewCached(next core.Oracle, size int) (*Cached, error) {
	cache, err := lru.New[string, core.Feedback](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) CheckGuess(guess string) core.Feedback {
	if fb, ok := c.cache.Get(guess); ok {
		c.stats.Hits++
		if c.OnLookup != nil {
			c.OnLookup(true)
		}
		return fb
	}
	c.stats.Misses++
	if c.OnLookup != nil {
		c.OnLookup(false)
	}
	fb := c.next.CheckGuess(guess)
	c.cache.Add(guess, fb)
	return fb
}

func (c *Cached) Attempts() int { return c.next.Attempts() }

func (c *Cached) Stats() CacheStats { return c.stats }

func (c *Cached) Len() int { return c.cache.Len() }

// Reset purges the memo and resets the wrapped oracle when it supports it.
func (c *Cached) Reset() {
	c.cache.Purge()
	c.stats = CacheStats{}
	if r, ok := c.next.(Resettable); ok {
		r.Reset()
	}
}

// Regenerate purges the memo; answers for the old secret are meaningless.
func (c *Cached) Regenerate() {
	c.cache.Purge()
	c.stats = CacheStats{}
	if r, ok := c.next.(Resettable); ok {
		r.Regenerate()
	}
}
