/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for grammar inference runs.
*/

package inference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kleascm/cfginfer/pkg/graph"
	"github.com/kleascm/cfginfer/pkg/tokens"
)

// Config controls one Engine.
type Config struct {
	StartSymbol       string `json:"start_symbol" mapstructure:"start_symbol"`
	NonterminalPrefix string `json:"nonterminal_prefix" mapstructure:"nonterminal_prefix"`

	// Pivot and Contract tune maximal clique enumeration.
	Pivot    bool `json:"pivot" mapstructure:"pivot"`
	Contract bool `json:"contract" mapstructure:"contract"`

	// MaxIterations caps the number of folds. Zero means no cap.
	MaxIterations int `json:"max_iterations" mapstructure:"max_iterations"`

	BalanceCheck bool                 `json:"balance_check" mapstructure:"balance_check"`
	BracketPairs []tokens.BracketPair `json:"bracket_pairs" mapstructure:"bracket_pairs"`

	// VerifyFolds checks after every fold that the grammar still derives each example.
	VerifyFolds bool `json:"verify_folds" mapstructure:"verify_folds"`

	// Workers bounds concurrent oracle queries. Zero uses the CPU count.
	Workers int `json:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() *Config {
	return &Config{
		StartSymbol:       "n0",
		NonterminalPrefix: "n",
		Pivot:             true,
		Contract:          true,
		BalanceCheck:      true,
		VerifyFolds:       true,
	}
}

// Validate rejects settings that cannot produce a well-formed grammar.
func (c *Config) Validate() error {
	if c.StartSymbol == "" {
		return fmt.Errorf("start_symbol must not be empty")
	}
	if c.NonterminalPrefix == "" {
		return fmt.Errorf("nonterminal_prefix must not be empty")
	}
	if rest, ok := strings.CutPrefix(c.StartSymbol, c.NonterminalPrefix); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			return fmt.Errorf("start_symbol %q collides with generated nonterminal names", c.StartSymbol)
		}
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	for _, p := range c.BracketPairs {
		if p.Open == "" || p.Close == "" || p.Open == p.Close {
			return fmt.Errorf("invalid bracket pair %q %q", p.Open, p.Close)
		}
	}
	return nil
}

func (c *Config) balancer() *tokens.Balancer {
	if !c.BalanceCheck {
		return tokens.NoBalance()
	}
	return tokens.NewBalancer(c.BracketPairs)
}

func (c *Config) cliqueOptions() graph.CliqueOptions {
	return graph.CliqueOptions{Pivot: c.Pivot, Contract: c.Contract, MinSize: 2}
}
