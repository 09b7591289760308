package parley

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
)

// Version is the current release of the Parley library.
const Version = "0.4.0"

// Re-export the pipeline stage vocabulary so consumers registering hooks
// don't need to import internal packages.

type (
	Stage        = runtime.Stage
	StageHandler = runtime.StageHandler
)

const (
	StageContextInit         = runtime.StageContextInit
	StageGetPreviousNode     = runtime.StageGetPreviousNode
	StageRewritePreviousNode = runtime.StageRewritePreviousNode
	StagePreTransition       = runtime.StagePreTransition
	StageResolveLabels       = runtime.StageResolveLabels
	StageGetNextNode         = runtime.StageGetNextNode
	StageRewriteNextNode     = runtime.StageRewriteNextNode
	StagePreResponse         = runtime.StagePreResponse
	StageCreateResponse      = runtime.StageCreateResponse
	StageFinishTurn          = runtime.StageFinishTurn
)

// Stages lists every pipeline stage in execution order.
var Stages = runtime.Stages

// Engine is the high-level entry point for the Parley library. It wraps
// the internal actor and provides a simplified API for consumers. An
// Engine is safe for concurrent use: the script is read-only, and each
// turn mutates only the Context it is given.
type Engine struct {
	actor *runtime.Engine
}

type settings struct {
	fallback        domain.Label
	defaultPriority float64
	logger          *slog.Logger
	validate        bool
	hasPriority     bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*settings)

// WithFallbackLabel sets the label a turn jumps to when no transition
// matches at any scope. Default: the start label.
func WithFallbackLabel(l domain.Label) Option {
	return func(s *settings) {
		s.fallback = l
	}
}

// WithDefaultPriority sets the priority substituted for transitions that
// don't declare one. Default: 1.0.
func WithDefaultPriority(p float64) Option {
	return func(s *settings) {
		s.defaultPriority = p
		s.hasPriority = true
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithoutValidation skips static script validation at construction.
func WithoutValidation() Option {
	return func(s *settings) {
		s.validate = false
	}
}

// New initializes a Parley Engine for the given script and start label.
// Unless disabled, the script is statically validated first; a broken
// script fails construction with a domain.AggregateError listing every
// problem found.
func New(script domain.Script, start domain.Label, opts ...Option) (*Engine, error) {
	s := settings{validate: true}
	for _, opt := range opts {
		opt(&s)
	}

	var actorOpts []runtime.Option
	if !s.fallback.IsZero() {
		actorOpts = append(actorOpts, runtime.WithFallback(s.fallback))
	}
	if s.hasPriority {
		actorOpts = append(actorOpts, runtime.WithDefaultPriority(s.defaultPriority))
	}
	if s.logger != nil {
		actorOpts = append(actorOpts, runtime.WithLogger(s.logger))
	}

	actor, err := runtime.New(script, start, s.validate, actorOpts...)
	if err != nil {
		return nil, err
	}
	return &Engine{actor: actor}, nil
}

// OnStage registers an observer fired at the given pipeline stage
// boundary. Handlers receive the context and the engine handle; they are
// telemetry hooks only and cannot alter control flow. Register hooks
// before serving traffic.
func (e *Engine) OnStage(stage Stage, h StageHandler) {
	e.actor.OnStage(stage, h)
}

// Runtime exposes the engine's read-only configuration handle, the same
// value user callbacks receive.
func (e *Engine) Runtime() domain.Runtime {
	return e.actor
}

// Run executes one dialogue turn. The input may be an existing
// *domain.Context, a serialized context (string or []byte), or nil for a
// fresh conversation. The caller is expected to have appended the turn's
// request with Context.AddRequest before calling Run.
func (e *Engine) Run(ctx context.Context, in any) (*domain.Context, error) {
	dc, err := castContext(in)
	if err != nil {
		return nil, err
	}
	return e.actor.Turn(ctx, dc)
}

func castContext(in any) (*domain.Context, error) {
	switch v := in.(type) {
	case nil:
		return nil, nil
	case *domain.Context:
		return v, nil
	case domain.Context:
		return &v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return domain.DecodeContext([]byte(v))
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return domain.DecodeContext(v)
	default:
		return nil, fmt.Errorf("unsupported context input type %T", in)
	}
}
