package domain

// Reserved names. A node stored under GlobalFlow/GlobalNode applies
// script-wide; a node stored under LocalNode applies flow-wide. Neither
// is ever visited directly; they are overlay sources only. Because
// flows and nodes are map keys, the "at most one GLOBAL node per script,
// at most one LOCAL node per flow" invariant holds by construction.
const (
	GlobalFlow = "GLOBAL"
	GlobalNode = "GLOBAL"
	LocalNode  = "LOCAL"
)

// Flow is a named group of nodes, the second addressing level of a script.
type Flow map[string]*Node

// Script is the full dialogue graph: flow name → node name → Node.
// A Script is immutable once handed to an engine; it is shared read-only
// by all concurrently running turns.
type Script map[string]Flow

// Node looks up a concrete node by address.
func (s Script) Node(flow, node string) (*Node, bool) {
	f, ok := s[flow]
	if !ok {
		return nil, false
	}
	n, ok := f[node]
	if !ok || n == nil {
		return nil, false
	}
	return n, true
}

// Has reports whether the label addresses an existing node.
func (s Script) Has(l Label) bool {
	_, ok := s.Node(l.Flow, l.Node)
	return ok
}

// Global returns the script-wide defaults node, or nil if absent.
func (s Script) Global() *Node {
	n, _ := s.Node(GlobalFlow, GlobalNode)
	return n
}

// Local returns the flow-wide defaults node of a flow, or nil if absent.
func (s Script) Local(flow string) *Node {
	n, _ := s.Node(flow, LocalNode)
	return n
}
