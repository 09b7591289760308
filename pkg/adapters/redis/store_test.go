package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunContextStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	dc := domain.NewContext()
	dc.ID = "expiring"
	require.NoError(t, store.Set(ctx, dc.ID, dc))

	ok, err := store.Contains(ctx, dc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// After the TTL passes the value and its index entry are gone.
	mr.FastForward(2 * time.Minute)

	ok, err = store.Contains(ctx, dc.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Counting also prunes the dead index entry, dropping the now-empty
	// index key.
	assert.False(t, mr.Exists("parley:context:index"))
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newTestStore(t, redis.WithPrefix("custom:"))
	ctx := context.Background()

	dc := domain.NewContext()
	require.NoError(t, store.Set(ctx, "abc", dc))

	assert.True(t, mr.Exists("custom:abc"))
}
