/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for inference telemetry. Supports
structured logging and Prometheus metrics.
*/

package inference

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Reporter is notified of loop progress.
type Reporter interface {
	// OnIteration is called after the cliques of an iteration are enumerated.
	OnIteration(ev IterationEvent)
	// OnFold is called after a clique was folded.
	OnFold(rec FoldRecord)
	// OnDone is called once when the run stops.
	OnDone(res *Result)
}

// IterationEvent summarizes the compatibility graph of one iteration.
type IterationEvent struct {
	Iteration int
	Bubbles   int
	Edges     int
	Cliques   int
}

// LoggerReporter logs loop events.
type LoggerReporter struct {
	logger *logrus.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logrus.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnIteration logs the graph size.
func (r *LoggerReporter) OnIteration(ev IterationEvent) {
	r.logger.WithFields(logrus.Fields{
		"iteration": ev.Iteration,
		"bubbles":   ev.Bubbles,
		"edges":     ev.Edges,
		"cliques":   ev.Cliques,
	}).Debug("Iteration graph built")
}

// OnFold logs the folded clique.
func (r *LoggerReporter) OnFold(rec FoldRecord) {
	r.logger.WithFields(logrus.Fields{
		"iteration":   rec.Iteration,
		"nonterminal": rec.Nonterminal,
		"clique_size": rec.CliqueSize,
		"values":      rec.Values,
		"coverage":    rec.Coverage,
		"new_strings": rec.NewStrings,
	}).Info("Fold applied")
}

// OnDone logs the summary.
func (r *LoggerReporter) OnDone(res *Result) {
	r.logger.WithFields(logrus.Fields{
		"run_id": res.RunID,
		"folds":  len(res.Folds),
		"known":  res.Known,
	}).Info("Run summary")
}

// PrometheusReporter exports loop metrics.
type PrometheusReporter struct {
	iterations   prometheus.Counter
	folds        prometheus.Counter
	cliqueSize   prometheus.Histogram
	nonterminals prometheus.Gauge
}

// NewPrometheusReporter creates unregistered collectors.
func NewPrometheusReporter() *PrometheusReporter {
	return &PrometheusReporter{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cfginfer",
			Subsystem: "inference",
			Name:      "iterations_total",
			Help:      "Compatibility graphs built.",
		}),
		folds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cfginfer",
			Subsystem: "inference",
			Name:      "folds_total",
			Help:      "Cliques folded into nonterminals.",
		}),
		cliqueSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cfginfer",
			Subsystem: "inference",
			Name:      "clique_size",
			Help:      "Size of folded cliques.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 8),
		}),
		nonterminals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cfginfer",
			Subsystem: "inference",
			Name:      "nonterminals",
			Help:      "Nonterminals in the last inferred grammar.",
		}),
	}
}

// Register adds the collectors to reg.
func (r *PrometheusReporter) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{r.iterations, r.folds, r.cliqueSize, r.nonterminals} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register inference metrics: %w", err)
		}
	}
	return nil
}

// OnIteration counts the iteration.
func (r *PrometheusReporter) OnIteration(IterationEvent) {
	r.iterations.Inc()
}

// OnFold counts the fold.
func (r *PrometheusReporter) OnFold(rec FoldRecord) {
	r.folds.Inc()
	r.cliqueSize.Observe(float64(rec.CliqueSize))
}

// OnDone records the grammar size.
func (r *PrometheusReporter) OnDone(res *Result) {
	if res.Grammar != nil {
		r.nonterminals.Set(float64(len(res.Grammar.Nonterminals())))
	}
}
