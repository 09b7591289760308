package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Context is the per-conversation state. Its three histories are indexed
// by turn: entry i of Requests, Labels and Responses belongs to turn i,
// and each history is append-only and gap-free. Misc persists across
// turns; the scratch area lives for exactly one turn and is never
// serialized.
//
// A Context has a single logical owner: the engine assumes at most one
// in-flight turn per conversation id. Serializing access is the job of
// the connector layer (see pkg/runner).
type Context struct {
	ID        string         `json:"id"`
	Labels    []Label        `json:"labels"`
	Requests  []Message      `json:"requests"`
	Responses []Message      `json:"responses"`
	Misc      map[string]any `json:"misc,omitempty"`

	scratch *Scratch
}

// Scratch is the engine-owned per-turn state. It is created at turn
// start, dropped at turn end, and never persisted. User processors may
// read it but should treat it as engine territory.
type Scratch struct {
	// Validation marks synthetic contexts built for static script
	// validation, so user callbacks can avoid real side effects.
	Validation bool

	// PreviousLabel/PreviousNode describe the node the turn leaves,
	// after scope overlay. Set from pipeline stages 2-3.
	PreviousLabel Label
	PreviousNode  *Node

	// NextLabel/NextNode describe the node the turn enters, after
	// scope overlay. Set from pipeline stages 6-7.
	NextLabel Label
	NextNode  *Node
}

// NewContext creates a fresh conversation context with a generated id.
func NewContext() *Context {
	return &Context{
		ID:   uuid.NewString(),
		Misc: make(map[string]any),
	}
}

// BeginTurn installs a fresh scratch area. Engine use only.
func (c *Context) BeginTurn(validation bool) {
	c.scratch = &Scratch{Validation: validation}
}

// EndTurn drops the scratch area. Engine use only.
func (c *Context) EndTurn() {
	c.scratch = nil
}

// Scratch returns the current turn's scratch area, or nil outside a turn.
func (c *Context) Scratch() *Scratch {
	return c.scratch
}

// AddRequest appends a request at the next turn index.
func (c *Context) AddRequest(m Message) {
	c.Requests = append(c.Requests, m)
}

// AddLabel appends a visited label at the next turn index.
func (c *Context) AddLabel(l Label) {
	c.Labels = append(c.Labels, l)
}

// AddResponse appends a response at the next turn index.
func (c *Context) AddResponse(m Message) {
	c.Responses = append(c.Responses, m)
}

// LastRequest returns the most recent request, if any.
func (c *Context) LastRequest() (Message, bool) {
	if len(c.Requests) == 0 {
		return Message{}, false
	}
	return c.Requests[len(c.Requests)-1], true
}

// LastLabel returns the most recently visited label, if any.
func (c *Context) LastLabel() (Label, bool) {
	if len(c.Labels) == 0 {
		return Label{}, false
	}
	return c.Labels[len(c.Labels)-1], true
}

// LastResponse returns the most recent response, if any.
func (c *Context) LastResponse() (Message, bool) {
	if len(c.Responses) == 0 {
		return Message{}, false
	}
	return c.Responses[len(c.Responses)-1], true
}

// Turns returns the number of requests recorded so far.
func (c *Context) Turns() int {
	return len(c.Requests)
}

// Clone returns a deep copy of the context. The scratch area is not
// copied: a clone starts outside any turn.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := &Context{
		ID:        c.ID,
		Labels:    append([]Label(nil), c.Labels...),
		Requests:  cloneMessages(c.Requests),
		Responses: cloneMessages(c.Responses),
		Misc:      make(map[string]any, len(c.Misc)),
	}
	for k, v := range c.Misc {
		out.Misc[k] = v
	}
	return out
}

func cloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = m
		if m.Misc != nil {
			out[i].Misc = make(map[string]any, len(m.Misc))
			for k, v := range m.Misc {
				out[i].Misc[k] = v
			}
		}
	}
	return out
}

// Serialize encodes the context as JSON. The scratch area is excluded.
func (c *Context) Serialize() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to serialize context: %w", err)
	}
	return string(data), nil
}

// DecodeContext restores a context from its serialized form. An empty
// Misc bag is omitted from the serialized form, so it is re-initialized
// here: processors must always find a writable map.
func DecodeContext(data []byte) (*Context, error) {
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}
	if c.Misc == nil {
		c.Misc = make(map[string]any)
	}
	return &c, nil
}
