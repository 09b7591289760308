package domain

import "log/slog"

// Runtime is the engine handle passed to user callbacks (conditions,
// label functions, processors, response producers). It exposes read-only
// engine configuration; callbacks must not assume anything beyond it.
type Runtime interface {
	// Script returns the immutable script the engine runs against.
	Script() Script

	// StartLabel is where fresh conversations begin.
	StartLabel() Label

	// FallbackLabel is where a turn goes when no transition matches.
	FallbackLabel() Label

	// DefaultPriority is substituted for the PriorityUnset sentinel.
	DefaultPriority() float64

	// Logger returns the engine's structured logger.
	Logger() *slog.Logger
}
