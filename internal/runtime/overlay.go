package runtime

import "github.com/aretw0/parley/pkg/domain"

// overlay builds the effective node for a concrete node in the given
// flow by layering GLOBAL → LOCAL(flow) → node. A fresh value is built
// from the three immutable layers on every call; the script itself is
// never mutated.
//
// Processor lists and Misc merge key-by-key with later layers winning.
// The response is the last non-empty one in layer order, so the node's
// own response wins over LOCAL, which wins over GLOBAL.
//
// Transitions are asymmetric on purpose: when mergeTransitions is false
// (the node the turn is leaving) only the node's own transitions are
// kept, because GLOBAL and LOCAL transitions are evaluated once per turn
// as independent scopes. When true (the node the turn enters) all three
// layers are concatenated in layer order.
func (e *Engine) overlay(flow string, node *domain.Node, mergeTransitions bool) *domain.Node {
	layers := make([]*domain.Node, 0, 3)
	if g := e.script.Global(); g != nil {
		layers = append(layers, g)
	}
	if l := e.script.Local(flow); l != nil {
		layers = append(layers, l)
	}
	if node != nil {
		layers = append(layers, node)
	}

	out := &domain.Node{}
	for _, layer := range layers {
		out.PreTransition = mergeProcessors(out.PreTransition, layer.PreTransition)
		out.PreResponse = mergeProcessors(out.PreResponse, layer.PreResponse)
		out.Misc = mergeMisc(out.Misc, layer.Misc)
		if !layer.Response.IsZero() {
			out.Response = layer.Response
		}
		if mergeTransitions {
			out.Transitions = append(out.Transitions, layer.Transitions...)
		}
	}
	if !mergeTransitions && node != nil {
		out.Transitions = append(out.Transitions, node.Transitions...)
	}
	return out
}

// mergeProcessors overlays a later processor list onto an earlier one.
// Names already present are overridden in place, keeping the earlier
// order; new names are appended in the later layer's order.
func mergeProcessors(base, over []domain.NamedProcessor) []domain.NamedProcessor {
	if len(over) == 0 {
		return base
	}
	out := append([]domain.NamedProcessor(nil), base...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Name] = i
	}
	for _, p := range over {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

func mergeMisc(base, over map[string]any) map[string]any {
	if len(over) == 0 {
		return base
	}
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
