/*
Package ports defines the driven ports (interfaces) for the Parley
engine's surroundings.

The engine core never performs I/O; connectors load a Context before a
turn and persist it afterwards through the ContextStore interface. The
package also ships a reusable contract test so every adapter proves the
same behavior.
*/
package ports
