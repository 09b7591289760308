// Package runtime implements the Parley actor: the fixed ten-stage
// pipeline that executes one dialogue turn against an immutable script.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// Stage identifies one step of the turn pipeline. Stage hooks fire at
// every stage boundary, in pipeline order.
type Stage string

const (
	StageContextInit         Stage = "context_init"
	StageGetPreviousNode     Stage = "get_previous_node"
	StageRewritePreviousNode Stage = "rewrite_previous_node"
	StagePreTransition       Stage = "run_pre_transition_processors"
	StageResolveLabels       Stage = "resolve_true_labels"
	StageGetNextNode         Stage = "get_next_node"
	StageRewriteNextNode     Stage = "rewrite_next_node"
	StagePreResponse         Stage = "run_pre_response_processors"
	StageCreateResponse      Stage = "create_response"
	StageFinishTurn          Stage = "finish_turn"
)

// Stages lists every pipeline stage in execution order.
var Stages = []Stage{
	StageContextInit,
	StageGetPreviousNode,
	StageRewritePreviousNode,
	StagePreTransition,
	StageResolveLabels,
	StageGetNextNode,
	StageRewriteNextNode,
	StagePreResponse,
	StageCreateResponse,
	StageFinishTurn,
}

// StageHandler observes a stage boundary. Handlers are side-effect hooks
// for telemetry: they cannot alter control flow, and panics inside them
// are not caught by the engine.
type StageHandler func(ctx context.Context, dc *domain.Context, rt domain.Runtime)

// Engine executes dialogue turns. It holds no per-conversation state and
// may be shared by arbitrarily many concurrent turns; all mutation
// happens on the Context passed to Turn.
type Engine struct {
	script          domain.Script
	start           domain.Label
	fallback        domain.Label
	defaultPriority float64
	logger          *slog.Logger
	hooks           map[Stage][]StageHandler
}

// Option configures the Engine.
type Option func(*Engine)

// WithFallback sets the label used when no transition matches anywhere.
// Default: the start label.
func WithFallback(l domain.Label) Option {
	return func(e *Engine) {
		e.fallback = l
	}
}

// WithDefaultPriority sets the priority substituted for the
// PriorityUnset sentinel. Default: 1.0.
func WithDefaultPriority(p float64) Option {
	return func(e *Engine) {
		e.defaultPriority = p
	}
}

// WithLogger sets the structured logger. Default: no-op.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New builds an engine for the given script and start label and, unless
// disabled, statically validates the script, returning an aggregated
// error listing every problem found.
func New(script domain.Script, start domain.Label, validate bool, opts ...Option) (*Engine, error) {
	e := &Engine{
		script:          script,
		start:           start,
		defaultPriority: 1.0,
		logger:          logging.NewNop(),
		hooks:           make(map[Stage][]StageHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fallback.IsZero() {
		e.fallback = e.start
	}

	if !script.Has(e.start) {
		return nil, fmt.Errorf("start label %s does not exist in script", e.start)
	}
	if !script.Has(e.fallback) {
		return nil, fmt.Errorf("fallback label %s does not exist in script", e.fallback)
	}

	if validate {
		if err := e.validate(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// OnStage registers a handler fired at the given stage boundary.
// Registration is not safe for concurrent use with running turns; wire
// hooks up before serving traffic.
func (e *Engine) OnStage(stage Stage, h StageHandler) {
	e.hooks[stage] = append(e.hooks[stage], h)
}

func (e *Engine) emit(ctx context.Context, stage Stage, dc *domain.Context) {
	for _, h := range e.hooks[stage] {
		h(ctx, dc, e)
	}
}

// Script implements domain.Runtime.
func (e *Engine) Script() domain.Script { return e.script }

// StartLabel implements domain.Runtime.
func (e *Engine) StartLabel() domain.Label { return e.start }

// FallbackLabel implements domain.Runtime.
func (e *Engine) FallbackLabel() domain.Label { return e.fallback }

// DefaultPriority implements domain.Runtime.
func (e *Engine) DefaultPriority() float64 { return e.defaultPriority }

// Logger implements domain.Runtime.
func (e *Engine) Logger() *slog.Logger { return e.logger }
