/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Grammar inference engine. Examples become one flat tree each; the engine
then repeatedly folds the largest oracle-verified clique of interchangeable bubbles
into a fresh nonterminal until no clique generalizes any further.
*/

package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/oracle"
	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/sirupsen/logrus"
)

// Engine infers grammars against one membership oracle. Verdicts are cached across
// runs of the same engine.
type Engine struct {
	config    *Config
	oracle    *oracle.CachedOracle
	logger    *logrus.Logger
	reporters []Reporter
}

// NewEngine validates config and wraps o in a cache unless it already is one.
func NewEngine(config *Config, o oracle.Oracle, logger *logrus.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inference config: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("oracle must not be nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cached, ok := o.(*oracle.CachedOracle)
	if !ok {
		cached = oracle.NewCachedOracle(o, oracle.WithWorkers(config.Workers), oracle.WithLogger(logger))
	}
	return &Engine{config: config, oracle: cached, logger: logger}, nil
}

// AddReporter registers a listener for loop events.
func (e *Engine) AddReporter(r Reporter) {
	e.reporters = append(e.reporters, r)
}

// Oracle returns the cached oracle used by the engine.
func (e *Engine) Oracle() *oracle.CachedOracle {
	return e.oracle
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

func prepare(examples []tokens.Tokens) []tokens.Tokens {
	nonEmpty := make([]tokens.Tokens, 0, len(examples))
	for _, ex := range examples {
		if len(ex) > 0 {
			nonEmpty = append(nonEmpty, ex)
		}
	}
	return tokens.Dedupe(nonEmpty)
}

// Infer runs the loop over examples. When ctx ends between iterations the grammar
// reached so far is returned together with the context error.
func (e *Engine) Infer(ctx context.Context, examples []tokens.Tokens) (*Result, error) {
	started := time.Now()
	runID := uuid.New().String()
	log := e.logger.WithField("run_id", runID)

	examples = prepare(examples)
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}
	log.WithFields(logrus.Fields{
		"examples": len(examples),
		"start":    e.config.StartSymbol,
	}).Info("Inference started")

	r, err := newRun(ctx, e.config, e.oracle, examples, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run: %w", err)
	}

	result := &Result{RunID: runID, Examples: len(examples)}
	finish := func() *Result {
		r.setState(StateDone)
		result.Grammar = r.grammar
		result.Oracle = e.oracle.Stats().Snapshot()
		result.Known = r.known.Len()
		result.Duration = time.Since(started)
		for _, rep := range e.reporters {
			rep.OnDone(result)
		}
		log.WithFields(logrus.Fields{
			"folds":        len(result.Folds),
			"nonterminals": len(r.grammar.Nonterminals()),
			"oracle_calls": result.Oracle.Calls,
			"duration":     result.Duration,
		}).Info("Inference finished")
		return result
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		if e.config.MaxIterations > 0 && r.iteration >= e.config.MaxIterations {
			log.WithField("max_iterations", e.config.MaxIterations).Warn("Iteration cap reached")
			return finish(), nil
		}

		r.setState(StateBuildGraph)
		g := r.buildGraph()

		r.setState(StateEnumerate)
		cliques := g.MaximalCliques(e.config.cliqueOptions())
		event := IterationEvent{
			Iteration: r.iteration + 1,
			Bubbles:   len(r.bubbles),
			Edges:     g.NumEdges(),
			Cliques:   len(cliques),
		}
		for _, rep := range e.reporters {
			rep.OnIteration(event)
		}

		r.setState(StateSelectClique)
		sel, err := r.selectClique(ctx, cliques)
		if err != nil {
			return finish(), err
		}
		if sel == nil {
			return finish(), nil
		}

		r.setState(StateFoldAndUpdate)
		r.iteration++
		rec, err := e.fold(r, sel)
		if err != nil {
			return nil, err
		}
		result.Folds = append(result.Folds, rec)
		for _, rep := range e.reporters {
			rep.OnFold(rec)
		}
	}
}

func (e *Engine) fold(r *run, sel *selection) (FoldRecord, error) {
	nt := r.namer.Next()
	before := r.grammar
	trees := r.forest.PrettyAll()
	fail := func(err error) error {
		return &InvariantError{Iteration: r.iteration, Nonterminal: nt, Grammar: before, Trees: trees, Err: err}
	}

	if err := r.foldClique(sel.members, nt); err != nil {
		return FoldRecord{}, fail(err)
	}
	r.refreshGrammar()

	if e.config.VerifyFolds {
		for i, ex := range r.examples {
			if !r.known.Derives(ex) {
				return FoldRecord{}, fail(inconsistent("grammar no longer derives example %d", i))
			}
		}
	}

	derivable := 0
	for _, s := range sel.coverage {
		if r.known.Derives(s) {
			derivable++
		}
	}
	return FoldRecord{
		Iteration:   r.iteration,
		Nonterminal: nt,
		CliqueSize:  len(sel.members),
		Values:      sel.values,
		Coverage:    len(sel.coverage),
		NewStrings:  sel.fresh,
		Derivable:   derivable,
		Bubbles:     len(r.bubbles),
	}, nil
}

// IsInvariantError reports whether err aborted a run on a structural inconsistency.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// Infer is a convenience wrapper running a default engine over a plain predicate.
func Infer(ctx context.Context, examples []tokens.Tokens, accept func(tokens.Tokens) bool) (*grammar.Grammar, error) {
	e, err := NewEngine(DefaultConfig(), oracle.Predicate(accept), nil)
	if err != nil {
		return nil, err
	}
	res, err := e.Infer(ctx, examples)
	if err != nil {
		return nil, err
	}
	return res.Grammar, nil
}
