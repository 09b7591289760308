// Package redis provides a Redis-backed ContextStore for multi-instance
// deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/parley/pkg/domain"
)

// farFuture is the index score for contexts without a TTL (2100-01-01).
const farFuture = 4102444800

// Store implements ports.ContextStore using Redis. Contexts are stored
// as JSON values, with a ZSET index scored by expiry so Len and Clear
// stay cheap.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for stored contexts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored contexts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "parley:context:",
		ttl:    0, // no expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Set persists the context to Redis.
func (s *Store) Set(ctx context.Context, id string, dc *domain.Context) error {
	data, err := json.Marshal(dc)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	score := float64(farFuture)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves the context from Redis.
func (s *Store) Get(ctx context.Context, id string) (*domain.Context, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrContextNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return domain.DecodeContext(val)
}

// Delete removes the context and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Contains reports whether the id is stored.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check redis: %w", err)
	}
	return n > 0, nil
}

// Len returns the number of live contexts. Index entries whose value
// already expired are pruned along the way.
func (s *Store) Len(ctx context.Context) (int, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list redis index: %w", err)
	}

	count := 0
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to check redis: %w", err)
		}
		if n > 0 {
			count++
			continue
		}
		if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil {
			return 0, fmt.Errorf("failed to prune redis index: %w", err)
		}
	}
	return count, nil
}

// Clear removes every stored context and the index.
func (s *Store) Clear(ctx context.Context) error {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list redis index: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.key(id))
	}
	pipe.Del(ctx, s.indexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear redis store: %w", err)
	}
	return nil
}
