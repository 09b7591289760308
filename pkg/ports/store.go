package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// ContextStore maps conversation ids to persisted dialogue Contexts.
// The engine core never calls a store directly; the surrounding runner
// loads a Context before a turn and persists it after.
type ContextStore interface {
	// Get retrieves the context for a conversation id.
	// Returns domain.ErrContextNotFound if the id is unknown.
	Get(ctx context.Context, id string) (*domain.Context, error)

	// Set persists the context under the given id.
	Set(ctx context.Context, id string, dc *domain.Context) error

	// Delete removes the context for an id. Deleting an unknown id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Contains reports whether the id has a persisted context.
	Contains(ctx context.Context, id string) (bool, error)

	// Len returns the number of persisted contexts.
	Len(ctx context.Context) (int, error)

	// Clear removes every persisted context.
	Clear(ctx context.Context) error
}
