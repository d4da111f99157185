/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: external.go
Description: Subprocess oracle. Each candidate is rendered to text and handed to an
external recognizer, either as a temporary file argument or on stdin. Exit status zero
means the candidate belongs to the language; a run past the timeout is killed and
reported as ErrTimeout.
*/

package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kleascm/cfginfer/pkg/tokens"
)

// InputMode selects how candidates reach the recognizer.
type InputMode string

const (
	InputFile  InputMode = "file"
	InputStdin InputMode = "stdin"
)

// Render selects which token field the recognizer sees.
type Render string

const (
	RenderValues Render = "values"
	RenderTypes  Render = "types"
)

// DefaultTimeout bounds one recognizer run.
const DefaultTimeout = 10 * time.Second

// Instantiator renders a token sequence as recognizer input.
type Instantiator func(tokens.Tokens) string

// JoinValues renders token texts separated by sep.
func JoinValues(sep string) Instantiator {
	return func(toks tokens.Tokens) string {
		parts := make([]string, len(toks))
		for i, t := range toks {
			parts[i] = t.Text()
		}
		return strings.Join(parts, sep)
	}
}

// JoinTypes renders token types separated by sep.
func JoinTypes(sep string) Instantiator {
	return func(toks tokens.Tokens) string {
		return strings.Join(toks.Types(), sep)
	}
}

// ExternalConfig describes the recognizer command.
type ExternalConfig struct {
	Command   string        `json:"command" mapstructure:"command"`
	Args      []string      `json:"args" mapstructure:"args"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	InputMode InputMode     `json:"input_mode" mapstructure:"input_mode"`
	Separator string        `json:"separator" mapstructure:"separator"`
	Render    Render        `json:"render" mapstructure:"render"`
}

// Validate fills defaults and rejects unusable settings.
func (c *ExternalConfig) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("oracle command must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("oracle timeout must not be negative")
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	switch c.InputMode {
	case "":
		c.InputMode = InputFile
	case InputFile, InputStdin:
	default:
		return fmt.Errorf("unsupported input mode: %s", c.InputMode)
	}
	if c.Separator == "" {
		c.Separator = " "
	}
	switch c.Render {
	case "":
		c.Render = RenderValues
	case RenderValues, RenderTypes:
	default:
		return fmt.Errorf("unsupported render mode: %s", c.Render)
	}
	return nil
}

func (c ExternalConfig) instantiator() Instantiator {
	if c.Render == RenderTypes {
		return JoinTypes(c.Separator)
	}
	return JoinValues(c.Separator)
}

// ExternalOracle runs a recognizer process per query.
type ExternalOracle struct {
	config      ExternalConfig
	instantiate Instantiator
}

// NewExternalOracle validates config and renders candidates as its Render mode asks.
func NewExternalOracle(config ExternalConfig) (*ExternalOracle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ExternalOracle{
		config:      config,
		instantiate: config.instantiator(),
	}, nil
}

// Config returns the validated configuration.
func (o *ExternalOracle) Config() ExternalConfig { return o.config }

// Parse runs the recognizer on toks.
func (o *ExternalOracle) Parse(ctx context.Context, toks tokens.Tokens) (bool, error) {
	input := o.instantiate(toks)

	runCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	args := append([]string(nil), o.config.Args...)
	var stdin *strings.Reader
	if o.config.InputMode == InputStdin {
		stdin = strings.NewReader(input)
	} else {
		tmpfile, err := os.CreateTemp("", "cfginfer-candidate-*")
		if err != nil {
			return false, fmt.Errorf("failed to create candidate file: %w", err)
		}
		defer os.Remove(tmpfile.Name())
		if _, err := tmpfile.WriteString(input); err != nil {
			tmpfile.Close()
			return false, fmt.Errorf("failed to write candidate file: %w", err)
		}
		if err := tmpfile.Close(); err != nil {
			return false, fmt.Errorf("failed to close candidate file: %w", err)
		}
		args = append(args, tmpfile.Name())
	}

	cmd := exec.CommandContext(runCtx, o.config.Command, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return false, fmt.Errorf("%s exceeded %s: %w", o.config.Command, o.config.Timeout, ErrTimeout)
	}
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("failed to run %s: %w", o.config.Command, err)
}
