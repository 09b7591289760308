package runtime

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// validate statically checks every transition in the script: the target
// must resolve to an existing node, the target's effective response must
// render, and the guard condition must evaluate. Checks run against
// synthetic validation contexts and a private copy of the engine so user
// callbacks cannot leak side effects into live state. Every problem is
// recorded; nothing short-circuits.
//
// Bare node targets normally bind to the flow that declares them. The
// GLOBAL node has no flow of its own: its bare targets bind to the
// previous label's flow at runtime, so their existence cannot be checked
// here and only their conditions are evaluated.
func (e *Engine) validate() error {
	// Working copy: same immutable script, no hooks.
	working := *e
	working.hooks = nil

	var errs []error
	record := func(flow, node, reason string, err error) {
		errs = append(errs, &domain.ValidationError{
			Flow:   flow,
			Node:   node,
			Reason: reason,
			Err:    err,
		})
	}

	ctx := context.Background()
	for flowName, flow := range e.script {
		for nodeName, node := range flow {
			if node == nil {
				continue
			}
			for _, t := range node.Transitions {
				vctx := newValidationContext()

				if _, err := safeCondition(ctx, vctx, &working, t.Condition); err != nil {
					record(flowName, nodeName, "condition failed", err)
				}

				if flowName == domain.GlobalFlow {
					if static, ok := t.Target.Static(); ok && static.Flow == "" {
						continue
					}
				}

				label, err := safeResolve(ctx, vctx, &working, t.Target, flowName)
				if err != nil {
					record(flowName, nodeName, "transition target did not resolve", err)
					continue
				}
				target, ok := e.script.Node(label.Flow, label.Node)
				if !ok {
					record(flowName, nodeName, "transition target "+label.String()+" does not exist", nil)
					continue
				}

				effective := working.overlayResponse(label.Flow, target)
				if _, err := safeRender(ctx, vctx, &working, effective); err != nil {
					record(label.Flow, label.Node, "response producer failed", err)
				}
			}
		}
	}

	if len(errs) > 0 {
		return &domain.AggregateError{Errors: errs}
	}
	return nil
}

// overlayResponse returns the response the node would produce at runtime
// after scope overlay.
func (e *Engine) overlayResponse(flow string, node *domain.Node) domain.Response {
	return e.overlay(flow, node, false).Response
}

// newValidationContext builds the synthetic context used for static
// checks: flagged as validation, one placeholder request.
func newValidationContext() *domain.Context {
	vctx := domain.NewContext()
	vctx.AddRequest(domain.Message{})
	vctx.BeginTurn(true)
	return vctx
}
