/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Example validation command. Inference is only meaningful when the oracle
accepts every example.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/cfginfer/pkg/oracle"
	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCheck verifies that the oracle accepts every example.
func RunCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	examples, err := LoadExamples(viper.GetString("examples"))
	if err != nil {
		return err
	}
	ext, err := oracle.NewExternalOracle(oracleConfig())
	if err != nil {
		return fmt.Errorf("invalid oracle configuration: %w", err)
	}
	cached := oracle.NewCachedOracle(ext,
		oracle.WithWorkers(viper.GetInt("inference.workers")),
		oracle.WithLogger(logger.GetLogger()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rejected, err := CheckExamples(ctx, cached, examples, logger.GetLogger())
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		return fmt.Errorf("oracle rejected %d of %d examples", len(rejected), len(examples))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "All %d examples accepted\n", len(examples))
	return nil
}

// CheckExamples returns the examples the oracle rejects.
func CheckExamples(ctx context.Context, o *oracle.CachedOracle, examples []tokens.Tokens, logger *logrus.Logger) ([]tokens.Tokens, error) {
	verdicts := o.Batch(ctx, examples)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rejected []tokens.Tokens
	for i, ex := range examples {
		if verdicts[tokens.Key(ex)] {
			continue
		}
		rejected = append(rejected, ex)
		logger.WithFields(logrus.Fields{
			"example": i,
			"input":   ex.String(),
		}).Error("Oracle rejected example")
	}
	return rejected, nil
}
