/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: output.go
Description: Grammar output in text, JSON and YAML form.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kleascm/cfginfer/pkg/grammar"
	"github.com/kleascm/cfginfer/pkg/inference"
	"gopkg.in/yaml.v3"
)

// grammarReport is the structured output of an inference run.
type grammarReport struct {
	RunID   string                 `json:"run_id" yaml:"run_id"`
	Grammar grammar.Document       `json:"grammar" yaml:"grammar"`
	Folds   []inference.FoldRecord `json:"folds" yaml:"folds"`
	Oracle  oracleReport           `json:"oracle" yaml:"oracle"`
}

type oracleReport struct {
	Calls     int64   `json:"calls" yaml:"calls"`
	CacheHits int64   `json:"cache_hits" yaml:"cache_hits"`
	Timeouts  int64   `json:"timeouts" yaml:"timeouts"`
	Failures  int64   `json:"failures" yaml:"failures"`
	CallTime  float64 `json:"call_time_seconds" yaml:"call_time_seconds"`
}

func newGrammarReport(res *inference.Result) grammarReport {
	return grammarReport{
		RunID:   res.RunID,
		Grammar: res.Grammar.Export(),
		Folds:   res.Folds,
		Oracle: oracleReport{
			Calls:     res.Oracle.Calls,
			CacheHits: res.Oracle.CacheHits,
			Timeouts:  res.Oracle.Timeouts,
			Failures:  res.Oracle.Failures,
			CallTime:  res.Oracle.CallTime.Seconds(),
		},
	}
}

// WriteGrammar renders res to w in format.
func WriteGrammar(w io.Writer, res *inference.Result, format string) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprintln(w, res.Grammar.String())
		return err

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newGrammarReport(res))

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newGrammarReport(res)); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
