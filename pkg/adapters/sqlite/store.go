// Package sqlite provides a ContextStore backed by a SQLite database,
// for single-instance deployments that need durable conversations
// without an external service.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

// Store implements ports.ContextStore on SQLite.
//
// It expects an *sql.DB opened with a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver:
//
//	import _ "modernc.org/sqlite"
type Store struct {
	db *sql.DB
}

// NewStore initializes the required schema in the given database and
// returns a new Store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init sqlite schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS contexts (
			id TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

// Set persists the context, replacing any previous value for the id.
func (s *Store) Set(ctx context.Context, id string, dc *domain.Context) error {
	data, err := json.Marshal(dc)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contexts (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

// Get retrieves the context for an id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Context, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM contexts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}
	return domain.DecodeContext(data)
}

// Delete removes the context for an id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}
	return nil
}

// Contains reports whether the id has a persisted context.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM contexts WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check context: %w", err)
	}
	return true, nil
}

// Len returns the number of persisted contexts.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contexts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count contexts: %w", err)
	}
	return n, nil
}

// Clear removes every persisted context.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contexts`); err != nil {
		return fmt.Errorf("failed to clear contexts: %w", err)
	}
	return nil
}
