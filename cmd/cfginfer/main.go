/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for cfginfer. Infers a context-free grammar from
example token sequences by querying a membership oracle command.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kleascm/cfginfer/cmd/cfginfer/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cfginfer",
		Short: "cfginfer - oracle-driven context-free grammar inference",
		Long: `cfginfer learns a context-free grammar from a handful of example inputs and a
membership oracle: a command that exits 0 for inputs of the target language. Spans of
the examples that the oracle shows to be interchangeable are folded into nonterminals
until no further generalization is confirmed.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty logs to stderr only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Bool("log-compress", false, "Compress log files on exit")
	rootCmd.PersistentFlags().Bool("log-colors", true, "Colorize console logs")

	rootCmd.PersistentFlags().String("examples", "", "Examples file (one per line) or directory (one per file)")
	rootCmd.PersistentFlags().String("oracle", "", "Oracle command; exit status 0 accepts the input")
	rootCmd.PersistentFlags().StringSlice("oracle-args", nil, "Arguments passed to the oracle before the input file")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout per oracle query")
	rootCmd.PersistentFlags().String("input-mode", "file", "How inputs reach the oracle (file, stdin)")
	rootCmd.PersistentFlags().String("separator", " ", "Separator placed between token texts")
	rootCmd.PersistentFlags().String("render", "values", "Token field handed to the oracle (values, types)")
	rootCmd.PersistentFlags().Int("workers", 0, "Concurrent oracle queries (0 = CPU count)")

	bind(rootCmd, map[string]string{
		"config":            "config",
		"log_level":         "log-level",
		"log_format":        "log-format",
		"log_dir":           "log-dir",
		"log_max_files":     "log-max-files",
		"log_compress":      "log-compress",
		"log_colors":        "log-colors",
		"examples":          "examples",
		"oracle.command":    "oracle",
		"oracle.args":       "oracle-args",
		"oracle.timeout":    "timeout",
		"oracle.input_mode": "input-mode",
		"oracle.separator":  "separator",
		"oracle.render":     "render",
		"inference.workers": "workers",
	}, true)

	inferCmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer a grammar from examples",
		Long: `Infer a grammar from the examples. Every example must be accepted by the oracle.
The grammar is printed to stdout or written to --output.`,
		RunE: commands.RunInference,
	}
	inferCmd.Flags().String("output", "", "Output file for the grammar (default stdout)")
	inferCmd.Flags().String("format", "text", "Grammar output format (text, json, yaml)")
	inferCmd.Flags().String("metrics-file", "", "Write Prometheus metrics in text format to this file")
	inferCmd.Flags().Bool("check", true, "Verify the oracle accepts every example first")
	inferCmd.Flags().String("start", "n0", "Start symbol")
	inferCmd.Flags().String("prefix", "n", "Prefix of generated nonterminals")
	inferCmd.Flags().Int("max-iterations", 0, "Maximum number of folds (0 = unlimited)")
	inferCmd.Flags().Bool("balance", true, "Only query bracket-balanced candidates")
	inferCmd.Flags().Bool("pivot", true, "Use pivoting in clique enumeration")
	inferCmd.Flags().Bool("contract", true, "Contract twin vertices before clique enumeration")
	inferCmd.Flags().Bool("verify", true, "Check after each fold that every example is still derivable")
	bind(inferCmd, map[string]string{
		"output":                       "output",
		"format":                       "format",
		"metrics_file":                 "metrics-file",
		"check":                        "check",
		"inference.start_symbol":       "start",
		"inference.nonterminal_prefix": "prefix",
		"inference.max_iterations":     "max-iterations",
		"inference.balance_check":      "balance",
		"inference.pivot":              "pivot",
		"inference.contract":           "contract",
		"inference.verify_folds":       "verify",
	}, false)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the oracle accepts every example",
		RunE:  commands.RunCheck,
	}

	rootCmd.AddCommand(inferCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func bind(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
