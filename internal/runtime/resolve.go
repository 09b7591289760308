package runtime

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// resolveNextLabel runs the three-scope decision algorithm: the GLOBAL,
// LOCAL(flow) and NODE transition tables each elect a true label
// independently, then the winners combine through the two-stage pick.
// The NODE scope uses the already-overlaid previous node, so its
// pre-transition processors have run.
func (e *Engine) resolveNextLabel(ctx context.Context, dc *domain.Context, flow string, prev *domain.Node) domain.Label {
	var globalTrue, localTrue, nodeTrue *domain.Label
	if g := e.script.Global(); g != nil {
		globalTrue = e.trueLabel(ctx, dc, g.Transitions, flow)
	}
	if l := e.script.Local(flow); l != nil {
		localTrue = e.trueLabel(ctx, dc, l.Transitions, flow)
	}
	nodeTrue = e.trueLabel(ctx, dc, prev.Transitions, flow)

	combined := pick(nodeTrue, localTrue)
	next := pick(combined, globalTrue)
	if next == nil {
		e.logger.Debug("no transition matched, using fallback", "fallback", e.fallback.String())
		return e.concrete(e.fallback)
	}
	return *next
}

// concrete replaces the priority sentinel with the engine default, so
// labels recorded in a history always carry an explicit priority.
func (e *Engine) concrete(l domain.Label) domain.Label {
	if !l.HasPriority() {
		l.Priority = e.defaultPriority
	}
	return l
}

// trueLabel elects the winning candidate of one transition table: every
// condition is evaluated fail-closed, surviving targets are resolved and
// normalized with the scope's flow as default, sentinel priorities are
// replaced by the engine default, and the highest priority wins with
// declaration order as the stable tie-break. Returns nil when the scope
// has no candidate.
func (e *Engine) trueLabel(ctx context.Context, dc *domain.Context, transitions []domain.Transition, defaultFlow string) *domain.Label {
	var best *domain.Label
	for _, t := range transitions {
		ok, err := safeCondition(ctx, dc, e, t.Condition)
		if err != nil {
			e.logger.Warn("condition failed, treated as false", "err", err)
			continue
		}
		if !ok {
			continue
		}

		label, err := safeResolve(ctx, dc, e, t.Target, defaultFlow)
		if err != nil {
			e.logger.Warn("label resolution failed, candidate dropped", "err", err)
			continue
		}
		if !label.HasPriority() {
			label.Priority = e.defaultPriority
		}

		// Strictly-greater keeps the first-declared candidate on ties.
		if best == nil || label.Priority > best.Priority {
			l := label
			best = &l
		}
	}
	return best
}

// pick combines two scope winners: the higher priority wins and a keeps
// precedence on ties. pick(a, nil) == a, pick(nil, nil) == nil.
func pick(a, b *domain.Label) *domain.Label {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Priority > a.Priority {
		return b
	}
	return a
}
