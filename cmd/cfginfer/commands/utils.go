/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the cfginfer commands. Provides configuration
loading, logging setup, example loading and oracle construction.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kleascm/cfginfer/pkg/inference"
	"github.com/kleascm/cfginfer/pkg/logging"
	"github.com/kleascm/cfginfer/pkg/oracle"
	"github.com/kleascm/cfginfer/pkg/tokens"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("CFGINFER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultLoggerConfig()
	config.Level = logging.LogLevel(viper.GetString("log_level"))
	config.Format = logging.LogFormat(viper.GetString("log_format"))
	config.OutputDir = viper.GetString("log_dir")
	config.MaxFiles = viper.GetInt("log_max_files")
	config.Compress = viper.GetBool("log_compress")
	config.Colors = viper.GetBool("log_colors")

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// LoadExamples reads examples from path. A file holds one example per non-empty line;
// a directory holds one example per regular file, read in name order.
func LoadExamples(path string) ([]tokens.Tokens, error) {
	if path == "" {
		return nil, fmt.Errorf("no examples given (use --examples)")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat examples: %w", err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read examples: %w", err)
		}
		return tokens.ParseLines(string(data)), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read examples directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []tokens.Tokens
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read example %s: %w", e.Name(), err)
		}
		if toks := tokens.ParseLine(string(data)); len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out, nil
}

// oracleConfig collects the oracle settings.
func oracleConfig() oracle.ExternalConfig {
	return oracle.ExternalConfig{
		Command:   viper.GetString("oracle.command"),
		Args:      viper.GetStringSlice("oracle.args"),
		Timeout:   viper.GetDuration("oracle.timeout"),
		InputMode: oracle.InputMode(viper.GetString("oracle.input_mode")),
		Separator: viper.GetString("oracle.separator"),
		Render:    oracle.Render(viper.GetString("oracle.render")),
	}
}

// inferenceConfig overlays configured settings on the defaults.
func inferenceConfig() (*inference.Config, error) {
	config := inference.DefaultConfig()
	set := func(key string, apply func(string)) {
		if viper.IsSet(key) {
			apply(key)
		}
	}
	set("inference.start_symbol", func(k string) { config.StartSymbol = viper.GetString(k) })
	set("inference.nonterminal_prefix", func(k string) { config.NonterminalPrefix = viper.GetString(k) })
	set("inference.max_iterations", func(k string) { config.MaxIterations = viper.GetInt(k) })
	set("inference.balance_check", func(k string) { config.BalanceCheck = viper.GetBool(k) })
	set("inference.pivot", func(k string) { config.Pivot = viper.GetBool(k) })
	set("inference.contract", func(k string) { config.Contract = viper.GetBool(k) })
	set("inference.verify_folds", func(k string) { config.VerifyFolds = viper.GetBool(k) })
	set("inference.workers", func(k string) { config.Workers = viper.GetInt(k) })
	if viper.IsSet("inference.bracket_pairs") {
		if err := viper.UnmarshalKey("inference.bracket_pairs", &config.BracketPairs); err != nil {
			return nil, fmt.Errorf("invalid bracket_pairs: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inference configuration: %w", err)
	}
	return config, nil
}
