package domain

import "context"

// Condition guards a transition. It is evaluated fail-closed: an error
// (or panic) during evaluation is logged by the engine and read as false,
// so a broken condition loses its candidate but never aborts the turn.
// A nil Condition is an "always" transition.
type Condition func(ctx context.Context, dc *Context, rt Runtime) (bool, error)

// ResponseFunc produces the reply for the node a turn lands on.
type ResponseFunc func(ctx context.Context, dc *Context, rt Runtime) (Message, error)

// Response is the reply attached to a node: either a static message or a
// producer function invoked once per visit. The zero Response means the
// node defines no reply of its own and inherits one from LOCAL/GLOBAL.
type Response struct {
	static *Message
	fn     ResponseFunc
}

// Text builds a static text response.
func Text(text string) Response {
	m := NewMessage(text)
	return Response{static: &m}
}

// Static builds a response from a fixed message.
func Static(m Message) Response {
	return Response{static: &m}
}

// Produce builds a response from a producer function.
func Produce(fn ResponseFunc) Response {
	return Response{fn: fn}
}

// IsZero reports whether the node defines no response.
func (r Response) IsZero() bool {
	return r.static == nil && r.fn == nil
}

// Render materializes the response for the current turn.
func (r Response) Render(ctx context.Context, dc *Context, rt Runtime) (Message, error) {
	switch {
	case r.fn != nil:
		return r.fn(ctx, dc, rt)
	case r.static != nil:
		return *r.static, nil
	default:
		return Message{}, nil
	}
}

// Processor is a named side-effect run before transition resolution or
// before response generation. It may mutate the Context. An error (or
// panic) skips this processor's effect; the rest of the list still runs.
type Processor func(ctx context.Context, dc *Context, rt Runtime) error

// NamedProcessor pairs a processor with the key used when GLOBAL, LOCAL
// and node processor lists are merged (later scopes override by name).
type NamedProcessor struct {
	Name string
	Fn   Processor
}

// Transition pairs a target reference with its guard. Order within a
// node's transition list is preserved and used as the tie-break between
// candidates of equal priority.
type Transition struct {
	Target    LabelRef
	Condition Condition
}

// Node is one conversation state.
type Node struct {
	// Transitions are the outgoing edges, in declaration order.
	Transitions []Transition

	// Response is the reply produced when a turn lands on this node.
	Response Response

	// PreTransition processors run on the node the conversation is
	// leaving, before the next label is resolved.
	PreTransition []NamedProcessor

	// PreResponse processors run on the node the conversation has
	// entered, before its response is produced.
	PreResponse []NamedProcessor

	// Misc is a free-form bag merged across scopes like the processor
	// lists; the engine never interprets it.
	Misc map[string]any
}
