/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cached_test.go
Description: Tests for the memoizing oracle: single query per string, batch
deduplication, fail-closed error handling and metrics.
*/

package oracle

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOracle struct {
	mu     sync.Mutex
	calls  map[string]int
	accept func(tokens.Tokens) (bool, error)
}

func newCounting(accept func(tokens.Tokens) (bool, error)) *countingOracle {
	return &countingOracle{calls: make(map[string]int), accept: accept}
}

func (c *countingOracle) Parse(_ context.Context, toks tokens.Tokens) (bool, error) {
	c.mu.Lock()
	c.calls[tokens.Key(toks)]++
	c.mu.Unlock()
	return c.accept(toks)
}

func (c *countingOracle) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func acceptLen(n int) func(tokens.Tokens) (bool, error) {
	return func(toks tokens.Tokens) (bool, error) { return len(toks) == n, nil }
}

func TestAcceptsQueriesOnce(t *testing.T) {
	raw := newCounting(acceptLen(2))
	c := NewCachedOracle(raw, WithLogger(quietLogger()))
	ctx := context.Background()

	assert.True(t, c.Accepts(ctx, tokens.ParseLine("a b")))
	assert.True(t, c.Accepts(ctx, tokens.ParseLine("a b")))
	assert.False(t, c.Accepts(ctx, tokens.ParseLine("a")))

	assert.Equal(t, 2, raw.total())
	snap := c.Stats().Snapshot()
	assert.Equal(t, int64(2), snap.Calls)
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(1), snap.Accepted)
	assert.Equal(t, int64(1), snap.Rejected)
}

func TestBatchDeduplicates(t *testing.T) {
	raw := newCounting(acceptLen(1))
	c := NewCachedOracle(raw, WithWorkers(4), WithLogger(quietLogger()))
	ctx := context.Background()

	items := []tokens.Tokens{
		tokens.ParseLine("a"),
		tokens.ParseLine("b c"),
		tokens.ParseLine("a"),
		tokens.ParseLine("d"),
	}
	out := c.Batch(ctx, items)
	require.Len(t, out, 3)
	assert.True(t, out[tokens.Key(tokens.ParseLine("a"))])
	assert.False(t, out[tokens.Key(tokens.ParseLine("b c"))])
	assert.Equal(t, 3, raw.total())

	out = c.Batch(ctx, items)
	assert.Len(t, out, 3)
	assert.Equal(t, 3, raw.total())
	assert.Equal(t, 3, c.Len())
}

func TestConcurrentAcceptsShareOneQuery(t *testing.T) {
	release := make(chan struct{})
	raw := newCounting(func(tokens.Tokens) (bool, error) {
		<-release
		return true, nil
	})
	c := NewCachedOracle(raw, WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, c.Accepts(context.Background(), tokens.ParseLine("x")))
		}()
	}
	close(release)
	wg.Wait()
	assert.Equal(t, 1, raw.total())
}

func TestFailuresAreRejections(t *testing.T) {
	raw := newCounting(func(toks tokens.Tokens) (bool, error) {
		switch toks.String() {
		case "slow":
			return true, ErrTimeout
		case "broken":
			return true, errors.New("recognizer crashed")
		}
		return true, nil
	})
	c := NewCachedOracle(raw, WithLogger(quietLogger()))
	ctx := context.Background()

	assert.False(t, c.Accepts(ctx, tokens.ParseLine("slow")))
	assert.False(t, c.Accepts(ctx, tokens.ParseLine("broken")))
	assert.True(t, c.Accepts(ctx, tokens.ParseLine("fine")))

	// cached as rejections, never retried
	assert.False(t, c.Accepts(ctx, tokens.ParseLine("slow")))
	assert.Equal(t, 3, raw.total())

	snap := c.Stats().Snapshot()
	assert.Equal(t, int64(1), snap.Timeouts)
	assert.Equal(t, int64(1), snap.Failures)
}

func TestCanceledQueriesAreNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	raw := newCounting(func(tokens.Tokens) (bool, error) {
		cancel()
		return false, context.Canceled
	})
	c := NewCachedOracle(raw, WithLogger(quietLogger()))

	assert.False(t, c.Accepts(ctx, tokens.ParseLine("x")))
	_, ok := c.Lookup(tokens.ParseLine("x"))
	assert.False(t, ok)
}

func TestStatsRegister(t *testing.T) {
	stats := NewStats()
	reg := prometheus.NewRegistry()
	require.NoError(t, stats.Register(reg))
	assert.Error(t, stats.Register(reg), "double registration must fail")

	c := NewCachedOracle(Predicate(func(toks tokens.Tokens) bool { return len(toks) > 1 }),
		WithStats(stats), WithLogger(quietLogger()))
	c.Batch(context.Background(), []tokens.Tokens{tokens.ParseLine("a b"), tokens.ParseLine("a")})
	c.Accepts(context.Background(), tokens.ParseLine("a"))

	assert.Equal(t, 1.0, testutil.ToFloat64(stats.queries.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.queries.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.cacheHits))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeAccepted, Classify(true, nil))
	assert.Equal(t, OutcomeRejected, Classify(false, nil))
	assert.Equal(t, OutcomeTimeout, Classify(true, context.DeadlineExceeded))
	assert.Equal(t, OutcomeFailure, Classify(true, errors.New("x")))
	assert.Equal(t, "timeout", OutcomeTimeout.String())
}
