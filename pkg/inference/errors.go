/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Errors surfaced by an inference run.
*/

package inference

import (
	"errors"
	"fmt"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/tree"
)

// ErrNoExamples is returned when no non-empty example is given.
var ErrNoExamples = errors.New("no examples")

// InvariantError aborts a run whose trees or bookkeeping became inconsistent. It keeps
// the grammar and trees as they were before the failing fold.
type InvariantError struct {
	Iteration   int
	Nonterminal string
	Grammar     *grammar.Grammar
	Trees       string
	Err         error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("iteration %d, folding %s: %v", e.Iteration, e.Nonterminal, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// inconsistent wraps a message as a structural inconsistency.
func inconsistent(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), tree.ErrStructuralInconsistency)
}
