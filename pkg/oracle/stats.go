/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Oracle call accounting. Counters are kept as atomics for snapshots and
mirrored into Prometheus collectors that callers may register.
*/

package oracle

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats counts oracle traffic for one cached oracle.
type Stats struct {
	calls     atomic.Int64
	hits      atomic.Int64
	accepted  atomic.Int64
	rejected  atomic.Int64
	timeouts  atomic.Int64
	failures  atomic.Int64
	callNanos atomic.Int64

	queries   *prometheus.CounterVec
	cacheHits prometheus.Counter
	latency   prometheus.Histogram
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Calls     int64         `json:"calls"`
	CacheHits int64         `json:"cache_hits"`
	Accepted  int64         `json:"accepted"`
	Rejected  int64         `json:"rejected"`
	Timeouts  int64         `json:"timeouts"`
	Failures  int64         `json:"failures"`
	CallTime  time.Duration `json:"call_time"`
}

// NewStats creates unregistered collectors.
func NewStats() *Stats {
	return &Stats{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cfginfer",
			Subsystem: "oracle",
			Name:      "queries_total",
			Help:      "Oracle queries by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cfginfer",
			Subsystem: "oracle",
			Name:      "cache_hits_total",
			Help:      "Membership answers served from the cache.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cfginfer",
			Subsystem: "oracle",
			Name:      "query_duration_seconds",
			Help:      "Wall time of oracle queries.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
}

// Register adds the collectors to reg.
func (s *Stats) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{s.queries, s.cacheHits, s.latency} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register oracle metrics: %w", err)
		}
	}
	return nil
}

func (s *Stats) record(o Outcome, d time.Duration) {
	s.calls.Add(1)
	s.callNanos.Add(int64(d))
	switch o {
	case OutcomeAccepted:
		s.accepted.Add(1)
	case OutcomeRejected:
		s.rejected.Add(1)
	case OutcomeTimeout:
		s.timeouts.Add(1)
	default:
		s.failures.Add(1)
	}
	s.queries.WithLabelValues(o.String()).Inc()
	s.latency.Observe(d.Seconds())
}

func (s *Stats) recordHit() {
	s.hits.Add(1)
	s.cacheHits.Inc()
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Calls:     s.calls.Load(),
		CacheHits: s.hits.Load(),
		Accepted:  s.accepted.Load(),
		Rejected:  s.rejected.Load(),
		Timeouts:  s.timeouts.Load(),
		Failures:  s.failures.Load(),
		CallTime:  time.Duration(s.callNanos.Load()),
	}
}
