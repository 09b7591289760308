// Package cli implements the interactive session and validation helpers
// behind the parley command.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/scriptyaml"
)

// Options configures an interactive session.
type Options struct {
	ScriptPath string
	SessionID  string
	Debug      bool
}

func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelWarn)
}

func buildEngine(scriptPath string, logger *slog.Logger) (*parley.Engine, error) {
	bundle, err := scriptyaml.Load(scriptPath)
	if err != nil {
		return nil, err
	}

	opts := []parley.Option{parley.WithLogger(logger)}
	if !bundle.Fallback.IsZero() {
		opts = append(opts, parley.WithFallbackLabel(bundle.Fallback))
	}
	return parley.New(bundle.Script, bundle.Start, opts...)
}

// RunREPL reads requests line by line from in and writes each turn's
// response to out, until EOF or "/quit".
func RunREPL(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	logger := createLogger(opts.Debug)

	engine, err := buildEngine(opts.ScriptPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if opts.Debug {
		attachDebugHooks(engine, logger)
	}

	r := runner.New(engine, memory.NewStore(), runner.WithLogger(logger))
	id := opts.SessionID
	if id == "" {
		id = "local"
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "parley", parley.Version, "(type /quit to exit)")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}

		response, err := r.Turn(ctx, id, domain.NewMessage(line))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, response.Text)
	}
	return scanner.Err()
}

// attachDebugHooks logs every pipeline stage with the turn's labels.
func attachDebugHooks(engine *parley.Engine, logger *slog.Logger) {
	for _, stage := range parley.Stages {
		stage := stage
		engine.OnStage(stage, func(ctx context.Context, dc *domain.Context, rt domain.Runtime) {
			attrs := []any{"stage", string(stage), "id", dc.ID}
			if s := dc.Scratch(); s != nil && !s.NextLabel.IsZero() {
				attrs = append(attrs, "next", s.NextLabel.String())
			}
			logger.Debug("pipeline stage", attrs...)
		})
	}
}

// Validate loads a YAML script and runs static validation, printing
// every problem found to out. Returns an error when the script is
// invalid.
func Validate(scriptPath string, out io.Writer) error {
	bundle, err := scriptyaml.Load(scriptPath)
	if err != nil {
		return err
	}

	opts := []parley.Option{}
	if !bundle.Fallback.IsZero() {
		opts = append(opts, parley.WithFallbackLabel(bundle.Fallback))
	}

	if _, err := parley.New(bundle.Script, bundle.Start, opts...); err != nil {
		if errs := domain.ValidationErrors(err); errs != nil {
			fmt.Fprintf(out, "script is invalid (%d problems):\n", len(errs))
			for _, e := range errs {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			return fmt.Errorf("validation failed")
		}
		return err
	}

	fmt.Fprintln(out, "script is valid")
	return nil
}
