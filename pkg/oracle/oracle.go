/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracle.go
Description: Membership oracle boundary. An oracle decides whether a token sequence
belongs to the target language. Errors are never propagated past the cache: a timeout
or failure counts as a rejection.
*/

package oracle

import (
	"context"
	"errors"

	"github.com/kleascm/cfginfer/pkg/tokens"
)

// ErrTimeout is returned by oracles that gave up waiting for a verdict.
var ErrTimeout = errors.New("oracle timeout")

// Oracle answers membership queries.
type Oracle interface {
	Parse(ctx context.Context, toks tokens.Tokens) (bool, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, toks tokens.Tokens) (bool, error)

// Parse calls f.
func (f Func) Parse(ctx context.Context, toks tokens.Tokens) (bool, error) {
	return f(ctx, toks)
}

// Predicate adapts an infallible membership test.
func Predicate(fn func(tokens.Tokens) bool) Oracle {
	return Func(func(_ context.Context, toks tokens.Tokens) (bool, error) {
		return fn(toks), nil
	})
}

// Outcome classifies a single query.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRejected
	OutcomeTimeout
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Classify maps a raw oracle answer to its outcome.
func Classify(accepted bool, err error) Outcome {
	switch {
	case err == nil && accepted:
		return OutcomeAccepted
	case err == nil:
		return OutcomeRejected
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeFailure
	}
}
