package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/42-Course/matcha/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements the storage.Store interface using PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// count runs a single-value COUNT query
func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
