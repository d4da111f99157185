/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: result.go
Description: Outcome of an inference run.
*/

package inference

import (
	"time"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/oracle"
)

// Result is the grammar reached by a run plus what it cost.
type Result struct {
	RunID    string           `json:"run_id" yaml:"run_id"`
	Grammar  *grammar.Grammar `json:"-" yaml:"-"`
	Examples int              `json:"examples" yaml:"examples"`
	Folds    []FoldRecord     `json:"folds" yaml:"folds"`
	Known    int              `json:"known" yaml:"known"`
	Oracle   oracle.Snapshot  `json:"oracle" yaml:"oracle"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// FoldRecord describes one applied fold.
type FoldRecord struct {
	Iteration   int      `json:"iteration" yaml:"iteration"`
	Nonterminal string   `json:"nonterminal" yaml:"nonterminal"`
	CliqueSize  int      `json:"clique_size" yaml:"clique_size"`
	Values      []string `json:"values" yaml:"values"`
	Coverage    int      `json:"coverage" yaml:"coverage"`
	NewStrings  int      `json:"new_strings" yaml:"new_strings"`
	Derivable   int      `json:"derivable" yaml:"derivable"`
	Bubbles     int      `json:"bubbles" yaml:"bubbles"`
}
