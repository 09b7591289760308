package parley_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/conditions"
	"github.com/aretw0/parley/pkg/domain"
)

// greetScript is the canonical three-node script: start moves to hello
// on "Hi", hello moves to bye on "fine", anything else falls back to
// start.
func greetScript() domain.Script {
	return domain.Script{
		"greet": {
			"start": &domain.Node{
				Response: domain.Text(""),
				Transitions: []domain.Transition{
					{Target: domain.To("hello"), Condition: conditions.ExactMatch("Hi")},
				},
			},
			"hello": &domain.Node{
				Response: domain.Text("Hi, how are you?"),
				Transitions: []domain.Transition{
					{Target: domain.To("bye"), Condition: conditions.ExactMatch("fine")},
				},
			},
			"bye": &domain.Node{
				Response: domain.Text("Good. Talk to you later."),
			},
		},
	}
}

func runTurns(t *testing.T, engine *parley.Engine, requests []string) (*domain.Context, []string) {
	t.Helper()
	var dc *domain.Context
	var responses []string
	for _, req := range requests {
		if dc == nil {
			dc = domain.NewContext()
		}
		dc.AddRequest(domain.NewMessage(req))

		var err error
		dc, err = engine.Run(context.Background(), dc)
		require.NoError(t, err)

		resp, ok := dc.LastResponse()
		require.True(t, ok)
		responses = append(responses, resp.Text)
	}
	return dc, responses
}

func TestEngine_HappyPathAndFallback(t *testing.T) {
	engine, err := parley.New(greetScript(), domain.NewLabel("greet", "start"))
	require.NoError(t, err)

	dc, responses := runTurns(t, engine, []string{"Hi", "fine", "??"})

	// The unmatched third request jumps to the fallback label (the
	// start label by default) and produces its response.
	assert.Equal(t, []string{"Hi, how are you?", "Good. Talk to you later.", ""}, responses)

	require.Len(t, dc.Labels, 3)
	assert.Equal(t, "hello", dc.Labels[0].Node)
	assert.Equal(t, "bye", dc.Labels[1].Node)
	assert.Equal(t, "start", dc.Labels[2].Node)

	// Histories stay gap-free and aligned.
	assert.Len(t, dc.Requests, 3)
	assert.Len(t, dc.Responses, 3)
	assert.Nil(t, dc.Scratch(), "scratch must be dropped after the turn")
}

func TestEngine_ExplicitFallbackLabel(t *testing.T) {
	script := greetScript()
	engine, err := parley.New(script, domain.NewLabel("greet", "start"),
		parley.WithFallbackLabel(domain.NewLabel("greet", "hello")))
	require.NoError(t, err)

	_, responses := runTurns(t, engine, []string{"??"})
	assert.Equal(t, []string{"Hi, how are you?"}, responses)
}

func TestEngine_FreshConversationIsSeeded(t *testing.T) {
	engine, err := parley.New(greetScript(), domain.NewLabel("greet", "start"))
	require.NoError(t, err)

	// Running with no input at all: the engine seeds an empty request
	// and the start label, then the empty request matches nothing and
	// falls back to start.
	dc, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, dc.Requests, 1)
	require.Len(t, dc.Labels, 2, "seed label plus the turn's label")
	assert.Equal(t, "start", dc.Labels[0].Node)
	assert.Equal(t, "start", dc.Labels[1].Node)

	resp, ok := dc.LastResponse()
	require.True(t, ok)
	assert.Equal(t, "", resp.Text)
}

func TestEngine_SerializedContextInput(t *testing.T) {
	engine, err := parley.New(greetScript(), domain.NewLabel("greet", "start"))
	require.NoError(t, err)

	dc, _ := runTurns(t, engine, []string{"Hi"})
	serialized, err := dc.Serialize()
	require.NoError(t, err)

	restored, err := domain.DecodeContext([]byte(serialized))
	require.NoError(t, err)
	restored.AddRequest(domain.NewMessage("fine"))

	out, err := engine.Run(context.Background(), serializedInput(t, restored))
	require.NoError(t, err)

	resp, ok := out.LastResponse()
	require.True(t, ok)
	assert.Equal(t, "Good. Talk to you later.", resp.Text)
}

// serializedInput re-serializes to exercise the string input path of Run.
func serializedInput(t *testing.T, dc *domain.Context) string {
	t.Helper()
	s, err := dc.Serialize()
	require.NoError(t, err)
	return s
}

func TestEngine_UnsupportedInput(t *testing.T) {
	engine, err := parley.New(greetScript(), domain.NewLabel("greet", "start"))
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), 42)
	assert.Error(t, err)
}

func TestEngine_GlobalVersusLocalPriority(t *testing.T) {
	// GLOBAL offers flowA:nodeX at 1.1, LOCAL offers flowA:nodeY at
	// 1.0, both conditions true. The two-stage pick elects GLOBAL.
	script := domain.Script{
		domain.GlobalFlow: {
			domain.GlobalNode: &domain.Node{
				Transitions: []domain.Transition{
					{Target: domain.ToFlow("flowA", "nodeX").WithPriority(1.1), Condition: conditions.True()},
				},
			},
		},
		"main": {
			domain.LocalNode: &domain.Node{
				Transitions: []domain.Transition{
					{Target: domain.ToFlow("flowA", "nodeY").WithPriority(1.0), Condition: conditions.True()},
				},
			},
			"start": &domain.Node{Response: domain.Text("start")},
		},
		"flowA": {
			"nodeX": &domain.Node{Response: domain.Text("X")},
			"nodeY": &domain.Node{Response: domain.Text("Y")},
		},
	}

	engine, err := parley.New(script, domain.NewLabel("main", "start"))
	require.NoError(t, err)

	dc, responses := runTurns(t, engine, []string{"anything"})
	assert.Equal(t, []string{"X"}, responses)

	last, ok := dc.LastLabel()
	require.True(t, ok)
	assert.Equal(t, domain.Label{Flow: "flowA", Node: "nodeX", Priority: 1.1}, last)
}

func TestEngine_LocalWinsWhenStrictlyHigher(t *testing.T) {
	script := domain.Script{
		domain.GlobalFlow: {
			domain.GlobalNode: &domain.Node{
				Transitions: []domain.Transition{
					{Target: domain.ToFlow("flowA", "nodeX").WithPriority(1.0), Condition: conditions.True()},
				},
			},
		},
		"main": {
			domain.LocalNode: &domain.Node{
				Transitions: []domain.Transition{
					{Target: domain.ToFlow("flowA", "nodeY").WithPriority(2.0), Condition: conditions.True()},
				},
			},
			"start": &domain.Node{Response: domain.Text("start")},
		},
		"flowA": {
			"nodeX": &domain.Node{Response: domain.Text("X")},
			"nodeY": &domain.Node{Response: domain.Text("Y")},
		},
	}

	engine, err := parley.New(script, domain.NewLabel("main", "start"))
	require.NoError(t, err)

	_, responses := runTurns(t, engine, []string{"anything"})
	assert.Equal(t, []string{"Y"}, responses)
}

func TestEngine_BrokenCallbacksNeverAbortTheTurn(t *testing.T) {
	raising := func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (bool, error) {
		return false, errors.New("annotator offline")
	}
	var processorRan bool

	script := domain.Script{
		"greet": {
			"start": &domain.Node{
				Response: domain.Text("still here"),
				PreTransition: []domain.NamedProcessor{
					{Name: "explode", Fn: func(ctx context.Context, dc *domain.Context, rt domain.Runtime) error {
						panic("processor bug")
					}},
					{Name: "after", Fn: func(ctx context.Context, dc *domain.Context, rt domain.Runtime) error {
						processorRan = true
						return nil
					}},
				},
				Transitions: []domain.Transition{
					{Target: domain.To("never"), Condition: raising},
					{Target: domain.ToFunc(func(ctx context.Context, dc *domain.Context, rt domain.Runtime) (domain.Label, error) {
						return domain.Label{}, errors.New("no target today")
					}), Condition: conditions.True()},
				},
			},
			"never": &domain.Node{Response: domain.Text("unreachable")},
		},
	}

	engine, err := parley.New(script, domain.NewLabel("greet", "start"), parley.WithoutValidation())
	require.NoError(t, err)

	_, responses := runTurns(t, engine, []string{"x", "y"})
	assert.Equal(t, []string{"still here", "still here"}, responses,
		"every candidate failing means fallback, never an aborted turn")
	assert.True(t, processorRan, "processors after a failing one still run")
}

func TestEngine_StageHooksFireInOrder(t *testing.T) {
	engine, err := parley.New(greetScript(), domain.NewLabel("greet", "start"))
	require.NoError(t, err)

	var seen []parley.Stage
	for _, stage := range parley.Stages {
		stage := stage
		engine.OnStage(stage, func(ctx context.Context, dc *domain.Context, rt domain.Runtime) {
			seen = append(seen, stage)
		})
	}

	_, _ = runTurns(t, engine, []string{"Hi"})
	assert.Equal(t, parley.Stages, seen)
}

func TestNew_ValidationAggregatesErrors(t *testing.T) {
	script := domain.Script{
		"greet": {
			"start": &domain.Node{
				Response: domain.Text(""),
				Transitions: []domain.Transition{
					{Target: domain.To("ghost"), Condition: conditions.True()},
					{Target: domain.ToFlow("nowhere", "nothing"), Condition: conditions.True()},
				},
			},
		},
	}

	_, err := parley.New(script, domain.NewLabel("greet", "start"))
	require.Error(t, err)

	errs := domain.ValidationErrors(err)
	require.Len(t, errs, 2, "every broken transition must be reported")

	var aggr *domain.AggregateError
	assert.True(t, errors.As(err, &aggr))
}

func TestNew_ValidationAllowsBareGlobalTargets(t *testing.T) {
	// A bare target in the GLOBAL scope binds to whatever flow the
	// conversation is in at runtime; construction must not report it as
	// missing.
	script := domain.Script{
		domain.GlobalFlow: {
			domain.GlobalNode: &domain.Node{
				Transitions: []domain.Transition{
					{Target: domain.To("menu").WithPriority(5), Condition: conditions.ExactMatch("menu")},
				},
			},
		},
		"main": {
			"start": &domain.Node{Response: domain.Text("start")},
			"menu":  &domain.Node{Response: domain.Text("menu")},
		},
	}

	engine, err := parley.New(script, domain.NewLabel("main", "start"))
	require.NoError(t, err)

	_, responses := runTurns(t, engine, []string{"menu"})
	assert.Equal(t, []string{"menu"}, responses)
}

func TestNew_ValidationCanBeDisabled(t *testing.T) {
	script := domain.Script{
		"greet": {
			"start": &domain.Node{
				Response: domain.Text(""),
				Transitions: []domain.Transition{
					{Target: domain.To("ghost"), Condition: conditions.True()},
				},
			},
		},
	}

	_, err := parley.New(script, domain.NewLabel("greet", "start"), parley.WithoutValidation())
	assert.NoError(t, err)
}

func TestNew_StartLabelMustExist(t *testing.T) {
	_, err := parley.New(greetScript(), domain.NewLabel("greet", "ghost"))
	assert.Error(t, err)
}
