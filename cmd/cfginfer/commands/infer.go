/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: infer.go
Description: Grammar inference command. Loads examples, wires the subprocess oracle
into the inference engine and writes the grammar plus optional metrics.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/cfginfer/pkg/inference"
	"github.com/kleascm/cfginfer/pkg/oracle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunInference infers a grammar from the configured examples and oracle.
func RunInference(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.GetLogger()

	examples, err := LoadExamples(viper.GetString("examples"))
	if err != nil {
		return err
	}
	config, err := inferenceConfig()
	if err != nil {
		return err
	}
	ext, err := oracle.NewExternalOracle(oracleConfig())
	if err != nil {
		return fmt.Errorf("invalid oracle configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	stats := oracle.NewStats()
	if err := stats.Register(registry); err != nil {
		return err
	}
	cached := oracle.NewCachedOracle(ext,
		oracle.WithWorkers(config.Workers),
		oracle.WithLogger(log),
		oracle.WithStats(stats))

	engine, err := inference.NewEngine(config, cached, log)
	if err != nil {
		return err
	}
	reporter := inference.NewPrometheusReporter()
	if err := reporter.Register(registry); err != nil {
		return err
	}
	engine.AddReporter(reporter)
	engine.AddReporter(inference.NewLoggerReporter(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.LogRunStart(len(examples), ext.Config().Command, map[string]interface{}{
		"timeout":    ext.Config().Timeout,
		"input_mode": ext.Config().InputMode,
	})

	if viper.GetBool("check") {
		rejected, err := CheckExamples(ctx, cached, examples, log)
		if err != nil {
			return err
		}
		if len(rejected) > 0 {
			return fmt.Errorf("oracle rejected %d of %d examples", len(rejected), len(examples))
		}
	}

	res, err := engine.Infer(ctx, examples)
	if err != nil && (res == nil || !errors.Is(err, context.Canceled)) {
		var ie *inference.InvariantError
		if errors.As(err, &ie) {
			log.WithFields(logrus.Fields{
				"iteration":   ie.Iteration,
				"nonterminal": ie.Nonterminal,
			}).Errorf("Inference aborted, last consistent grammar:\n%s\ntrees:\n%s", ie.Grammar, ie.Trees)
		}
		return fmt.Errorf("inference failed: %w", err)
	}
	if err != nil {
		log.Warn("Inference interrupted, writing partial grammar")
	}

	alternatives := 0
	for _, r := range res.Grammar.Rules() {
		alternatives += len(r.Alternatives)
	}
	logger.LogGrammar(len(res.Grammar.Nonterminals()), alternatives, map[string]interface{}{"folds": len(res.Folds)})
	logger.LogOracleStats(res.Oracle.Calls, res.Oracle.CacheHits, res.Oracle.CallTime, nil)

	if err := writeOutput(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if path := viper.GetString("metrics_file"); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func writeOutput(stdout io.Writer, res *inference.Result) error {
	format := viper.GetString("format")
	path := viper.GetString("output")
	if path == "" {
		return WriteGrammar(stdout, res, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteGrammar(f, res, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write grammar: %w", err)
	}
	return f.Close()
}
