package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/p-n-ai/pai-content/internal/platform/database"
)

const createContentTable = `CREATE TABLE IF NOT EXISTS lesson_content (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps records in the lesson_content table.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore ensures the lesson_content table exists.
func NewPostgresStore(ctx context.Context, db *database.DB) (*PostgresStore, error) {
	if db == nil || db.Pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if _, err := db.Pool.Exec(ctx, createContentTable); err != nil {
		return nil, fmt.Errorf("create lesson_content table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// DB returns the underlying connection pool.
func (s *PostgresStore) DB() *database.DB {
	return s.db
}

func (s *PostgresStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT value FROM lesson_content WHERE key = $1`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get content %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO lesson_content (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("set content %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM lesson_content WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete content %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
