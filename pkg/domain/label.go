package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// PriorityUnset is the sentinel priority meaning "use the engine's
// configured default priority". It is substituted when candidates are
// evaluated during a turn, never when a label is defined.
var PriorityUnset = math.Inf(-1)

// Label is the normalized address of a script node: the flow it lives in,
// the node name, and the priority used to rank competing transitions.
type Label struct {
	Flow     string  `json:"flow"`
	Node     string  `json:"node"`
	Priority float64 `json:"priority"`
}

// NewLabel builds a concrete label with an unset priority.
func NewLabel(flow, node string) Label {
	return Label{Flow: flow, Node: node, Priority: PriorityUnset}
}

// HasPriority reports whether the label carries an explicit priority
// rather than the PriorityUnset sentinel.
func (l Label) HasPriority() bool {
	return !math.IsInf(l.Priority, -1)
}

// IsZero reports whether the label is empty (no target at all).
func (l Label) IsZero() bool {
	return l.Flow == "" && l.Node == ""
}

func (l Label) String() string {
	if l.HasPriority() {
		return fmt.Sprintf("%s:%s(%g)", l.Flow, l.Node, l.Priority)
	}
	return fmt.Sprintf("%s:%s", l.Flow, l.Node)
}

// LabelFunc computes a transition target lazily, once per turn. Returning
// an error (or a label pointing at a node the script does not contain)
// drops the candidate; it never aborts the turn.
type LabelFunc func(ctx context.Context, dc *Context, rt Runtime) (Label, error)

// ErrNoCandidate is returned by LabelRef.Resolve when a dynamic reference
// produces no usable target.
var ErrNoCandidate = errors.New("label resolved to no candidate")

// LabelRef is a tagged reference to a transition target: either a static
// Label known at script-construction time, or a function evaluated lazily
// against the live conversation.
type LabelRef struct {
	static  *Label
	dynamic LabelFunc
}

// To references a node in the same flow the transition is defined in.
// The priority stays unset until evaluation.
func To(node string) LabelRef {
	l := Label{Node: node, Priority: PriorityUnset}
	return LabelRef{static: &l}
}

// ToFlow references a node in an explicit flow.
func ToFlow(flow, node string) LabelRef {
	l := Label{Flow: flow, Node: node, Priority: PriorityUnset}
	return LabelRef{static: &l}
}

// ToFunc references a target computed at evaluation time.
func ToFunc(fn LabelFunc) LabelRef {
	return LabelRef{dynamic: fn}
}

// WithPriority returns a copy of a static reference carrying an explicit
// priority. Dynamic references are returned unchanged: their priority is
// whatever the function reports.
func (r LabelRef) WithPriority(p float64) LabelRef {
	if r.static == nil {
		return r
	}
	l := *r.static
	l.Priority = p
	return LabelRef{static: &l}
}

// IsDynamic reports whether the reference is a deferred function.
func (r LabelRef) IsDynamic() bool {
	return r.dynamic != nil
}

// IsZero reports whether the reference points nowhere.
func (r LabelRef) IsZero() bool {
	return r.static == nil && r.dynamic == nil
}

// Static returns the underlying label of a static reference.
func (r LabelRef) Static() (Label, bool) {
	if r.static == nil {
		return Label{}, false
	}
	return *r.static, true
}

// Resolve normalizes the reference into a concrete Label, filling in
// defaultFlow when the flow was omitted. Dynamic references are invoked
// and their result normalized recursively; a dynamic result pointing at a
// node the script does not contain yields ErrNoCandidate. The priority
// sentinel is preserved as-is.
func (r LabelRef) Resolve(ctx context.Context, dc *Context, rt Runtime, defaultFlow string) (Label, error) {
	switch {
	case r.static != nil:
		l := *r.static
		if l.Flow == "" {
			l.Flow = defaultFlow
		}
		return l, nil
	case r.dynamic != nil:
		l, err := r.dynamic(ctx, dc, rt)
		if err != nil {
			return Label{}, err
		}
		if l.Flow == "" {
			l.Flow = defaultFlow
		}
		if l.IsZero() || !rt.Script().Has(l) {
			return Label{}, fmt.Errorf("%w: %s", ErrNoCandidate, l)
		}
		return l, nil
	default:
		return Label{}, ErrNoCandidate
	}
}
