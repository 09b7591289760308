package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/domain"
)

// RunContextStoreContract verifies that a ContextStore implementation
// adheres to the interface contract. Adapters call it from their own
// test files.
func RunContextStoreContract(t *testing.T, store ContextStore) {
	t.Helper()
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405.000")

	require.NoError(t, store.Clear(ctx))

	t.Run("Set and Get", func(t *testing.T) {
		dc := domain.NewContext()
		dc.ID = id
		dc.AddRequest(domain.NewMessage("Hi"))
		dc.AddLabel(domain.Label{Flow: "greet", Node: "start", Priority: 1})
		dc.AddResponse(domain.NewMessage("Hello!"))
		dc.Misc["name"] = "alice"

		require.NoError(t, store.Set(ctx, id, dc))

		loaded, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, dc.Requests, loaded.Requests)
		assert.Equal(t, dc.Labels, loaded.Labels)
		assert.Equal(t, dc.Responses, loaded.Responses)
		assert.Equal(t, "alice", loaded.Misc["name"])
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-"+id)
		assert.ErrorIs(t, err, domain.ErrContextNotFound)
	})

	t.Run("Contains and Len", func(t *testing.T) {
		ok, err := store.Contains(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Contains(ctx, "missing-"+id)
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrContextNotFound)

		// Deleting again must be a no-op.
		assert.NoError(t, store.Delete(ctx, id))
	})

	t.Run("Clear", func(t *testing.T) {
		for _, suffix := range []string{"-1", "-2", "-3"} {
			dc := domain.NewContext()
			dc.ID = id + suffix
			require.NoError(t, store.Set(ctx, dc.ID, dc))
		}

		require.NoError(t, store.Clear(ctx))

		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}
