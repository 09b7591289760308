/*
Package domain contains the core model of the Parley dialogue engine.

It defines the fundamental entities of a dialogue script (Labels, Nodes,
Flows and the Script itself) plus the per-conversation Context that the
engine mutates turn by turn. This package is kept pure and free of I/O or
persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Label: the normalized (flow, node, priority) address of a node.
  - Node: one conversation state with a response, outgoing transitions,
    and named side-effect processors.
  - Script: the two-level flow → node mapping, with reserved GLOBAL and
    LOCAL nodes holding scope-wide defaults.
  - Context: the runtime record of a conversation (label/request/response
    histories, persistent Misc bag, transient per-turn scratch).
*/
package domain
