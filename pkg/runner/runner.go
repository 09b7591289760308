// Package runner connects the Parley engine to a ContextStore: it loads
// (or creates) a conversation's Context, appends the incoming request,
// runs one turn, persists the result and returns the response.
//
// The engine core assumes at most one in-flight turn per conversation
// id; the Runner enforces that with per-id mutexes, garbage collected by
// reference counting.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// TurnEngine is the slice of the Parley engine the runner needs.
type TurnEngine interface {
	Run(ctx context.Context, in any) (*domain.Context, error)
}

// lockEntry holds a per-conversation mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Runner drives turns for many conversations over a shared store.
type Runner struct {
	engine TurnEngine
	store  ports.ContextStore
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger configures a logger for the Runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner over the given engine and store.
func New(engine TurnEngine, store ports.ContextStore, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		store:  store,
		logger: logging.NewNop(),
		locks:  make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acquire gets or creates the lock entry for an id and bumps its
// reference count. Callers must Lock entry.mu and later call release.
func (r *Runner) acquire(id string) *lockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.locks[id]
	if !ok {
		entry = &lockEntry{}
		r.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release drops a reference and deletes the entry at zero.
func (r *Runner) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(r.locks, id)
	}
}

// Turn processes one request for a conversation: load-or-create the
// context, append the request, run the engine, persist, and return the
// turn's response. Turns for the same id are serialized.
func (r *Runner) Turn(ctx context.Context, id string, request domain.Message) (domain.Message, error) {
	entry := r.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(id)
	}()

	dc, err := r.store.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrContextNotFound):
		dc = domain.NewContext()
		dc.ID = id
		r.logger.Debug("starting new conversation", "id", id)
	case err != nil:
		return domain.Message{}, fmt.Errorf("failed to load context %s: %w", id, err)
	}

	dc.AddRequest(request)

	dc, err = r.engine.Run(ctx, dc)
	if err != nil {
		// Treat the context as not-yet-committed: nothing is persisted.
		return domain.Message{}, fmt.Errorf("turn failed for %s: %w", id, err)
	}

	if err := r.store.Set(ctx, id, dc); err != nil {
		return domain.Message{}, fmt.Errorf("failed to persist context %s: %w", id, err)
	}

	response, _ := dc.LastResponse()
	return response, nil
}

// Context loads the persisted context of a conversation.
func (r *Runner) Context(ctx context.Context, id string) (*domain.Context, error) {
	entry := r.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(id)
	}()
	return r.store.Get(ctx, id)
}

// Forget removes a conversation from the store.
func (r *Runner) Forget(ctx context.Context, id string) error {
	entry := r.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(id)
	}()
	return r.store.Delete(ctx, id)
}
