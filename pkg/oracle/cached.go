/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cached.go
Description: Memoizing oracle wrapper. Every distinct token sequence reaches the
wrapped oracle at most once per cache. Batches are deduplicated and dispatched
concurrently with a bounded worker count.
*/

package oracle

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CachedOracle memoizes verdicts of an underlying oracle.
type CachedOracle struct {
	oracle  Oracle
	mu      sync.RWMutex
	cache   map[string]bool
	flight  singleflight.Group
	stats   *Stats
	workers int
	logger  *logrus.Logger
}

// Option configures a CachedOracle.
type Option func(*CachedOracle)

// WithWorkers bounds concurrent queries inside a batch.
func WithWorkers(n int) Option {
	return func(c *CachedOracle) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger used for failed queries.
func WithLogger(l *logrus.Logger) Option {
	return func(c *CachedOracle) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStats shares a Stats object.
func WithStats(s *Stats) Option {
	return func(c *CachedOracle) {
		if s != nil {
			c.stats = s
		}
	}
}

// NewCachedOracle wraps o.
func NewCachedOracle(o Oracle, opts ...Option) *CachedOracle {
	c := &CachedOracle{
		oracle:  o,
		cache:   make(map[string]bool),
		stats:   NewStats(),
		workers: runtime.NumCPU(),
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns the call accounting of this cache.
func (c *CachedOracle) Stats() *Stats { return c.stats }

// Len is the number of cached verdicts.
func (c *CachedOracle) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Lookup returns a cached verdict without querying.
func (c *CachedOracle) Lookup(toks tokens.Tokens) (accepted bool, ok bool) {
	return c.lookup(tokens.Key(toks))
}

func (c *CachedOracle) lookup(key string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.cache[key]
	return v, ok
}

// Parse implements Oracle. It never returns an error.
func (c *CachedOracle) Parse(ctx context.Context, toks tokens.Tokens) (bool, error) {
	return c.Accepts(ctx, toks), nil
}

// Accepts answers from the cache or queries the wrapped oracle once.
func (c *CachedOracle) Accepts(ctx context.Context, toks tokens.Tokens) bool {
	key := tokens.Key(toks)
	if v, ok := c.lookup(key); ok {
		c.stats.recordHit()
		return v
	}
	v, _, _ := c.flight.Do(key, func() (interface{}, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		accepted, keep := c.query(ctx, toks)
		if keep {
			c.mu.Lock()
			c.cache[key] = accepted
			c.mu.Unlock()
		}
		return accepted, nil
	})
	return v.(bool)
}

// query asks the wrapped oracle. The verdict is not kept when the caller's context
// ended, since the answer then says nothing about the string.
func (c *CachedOracle) query(ctx context.Context, toks tokens.Tokens) (bool, bool) {
	start := time.Now()
	accepted, err := c.oracle.Parse(ctx, toks)
	elapsed := time.Since(start)
	outcome := Classify(accepted, err)
	c.stats.record(outcome, elapsed)

	switch outcome {
	case OutcomeAccepted:
		return true, true
	case OutcomeRejected:
		return false, true
	}
	if ctx.Err() != nil {
		return false, false
	}
	c.logger.WithFields(logrus.Fields{
		"candidate": toks.String(),
		"outcome":   outcome.String(),
		"duration":  elapsed,
		"error":     err,
	}).Warn("Oracle query failed, treating as rejection")
	return false, true
}

// Batch answers every item, querying each distinct uncached sequence once. The result
// is keyed by tokens.Key.
func (c *CachedOracle) Batch(ctx context.Context, items []tokens.Tokens) map[string]bool {
	out := make(map[string]bool, len(items))
	var todo []tokens.Tokens
	queued := make(map[string]struct{})
	for _, item := range items {
		key := tokens.Key(item)
		if _, ok := out[key]; ok {
			continue
		}
		if _, ok := queued[key]; ok {
			continue
		}
		if v, ok := c.lookup(key); ok {
			c.stats.recordHit()
			out[key] = v
			continue
		}
		queued[key] = struct{}{}
		todo = append(todo, item)
	}

	results := make([]bool, len(todo))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, item := range todo {
		i, item := i, item
		g.Go(func() error {
			results[i] = c.Accepts(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	for i, item := range todo {
		out[tokens.Key(item)] = results[i]
	}
	return out
}
