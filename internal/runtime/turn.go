package runtime

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// Turn executes one request→response cycle. The ten stages run strictly
// in order with no branching back; per-turn recoverable failures
// (conditions, label functions, processors, response producers) are
// logged and absorbed so a single broken callback never breaks the
// conversation.
func (e *Engine) Turn(ctx context.Context, dc *domain.Context) (*domain.Context, error) {
	// Stage 1: context init. A context that has never seen a request is
	// seeded with an empty request and the start label so downstream
	// stages have a valid "previous node".
	if dc == nil {
		dc = domain.NewContext()
	}
	if dc.Turns() == 0 {
		dc.AddRequest(domain.Message{})
		dc.AddLabel(e.concrete(e.start))
	}
	dc.BeginTurn(false)
	defer dc.EndTurn()
	e.emit(ctx, StageContextInit, dc)

	// Stage 2: previous node. Missing nodes degrade to an empty node so
	// GLOBAL/LOCAL transitions can still move the conversation.
	prevLabel := e.start
	if last, ok := dc.LastLabel(); ok {
		prevLabel = last
	}
	prevNode, ok := e.script.Node(prevLabel.Flow, prevLabel.Node)
	if !ok {
		e.logger.Warn("previous node missing from script", "label", prevLabel.String())
		prevNode = &domain.Node{}
	}
	dc.Scratch().PreviousLabel = prevLabel
	e.emit(ctx, StageGetPreviousNode, dc)

	// Stage 3: rewrite previous node. Only the node's own transitions
	// are kept; GLOBAL/LOCAL transitions are evaluated per scope below.
	prev := e.overlay(prevLabel.Flow, prevNode, false)
	dc.Scratch().PreviousNode = prev
	e.emit(ctx, StageRewritePreviousNode, dc)

	// Stage 4: pre-transition processors.
	e.runProcessors(ctx, dc, prev.PreTransition, "pre_transition")
	e.emit(ctx, StagePreTransition, dc)

	// Stage 5: resolve true labels across the three scopes and combine.
	nextLabel := e.resolveNextLabel(ctx, dc, prevLabel.Flow, prev)
	e.emit(ctx, StageResolveLabels, dc)

	// Stage 6: next node.
	nextNode, ok := e.script.Node(nextLabel.Flow, nextLabel.Node)
	if !ok {
		e.logger.Warn("next node missing from script", "label", nextLabel.String())
		nextNode = &domain.Node{}
	}
	dc.AddLabel(nextLabel)
	dc.Scratch().NextLabel = nextLabel
	e.emit(ctx, StageGetNextNode, dc)

	// Stage 7: rewrite next node, full merge.
	next := e.overlay(nextLabel.Flow, nextNode, true)
	dc.Scratch().NextNode = next
	e.emit(ctx, StageRewriteNextNode, dc)

	// Stage 8: pre-response processors.
	e.runProcessors(ctx, dc, next.PreResponse, "pre_response")
	e.emit(ctx, StagePreResponse, dc)

	// Stage 9: response.
	response := e.renderResponse(ctx, dc, nextLabel, next)
	dc.AddResponse(response)
	e.emit(ctx, StageCreateResponse, dc)

	// Stage 10: finish. The deferred EndTurn drops the scratch area.
	e.emit(ctx, StageFinishTurn, dc)
	return dc, nil
}

// runProcessors applies a processor list in declaration order. A failing
// processor is logged and skipped; the rest still run.
func (e *Engine) runProcessors(ctx context.Context, dc *domain.Context, procs []domain.NamedProcessor, kind string) {
	for _, p := range procs {
		if p.Fn == nil {
			continue
		}
		if err := safeProcess(ctx, dc, e, p.Fn); err != nil {
			e.logger.Warn("processor failed, effect skipped",
				"kind", kind, "name", p.Name, "err", err)
		}
	}
}

// renderResponse materializes the node's response. A failing producer is
// logged and yields an empty message rather than aborting the turn.
func (e *Engine) renderResponse(ctx context.Context, dc *domain.Context, label domain.Label, node *domain.Node) domain.Message {
	msg, err := safeRender(ctx, dc, e, node.Response)
	if err != nil {
		e.logger.Error("response producer failed", "label", label.String(), "err", err)
		return domain.Message{}
	}
	return msg
}
