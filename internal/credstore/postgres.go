package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

// pgxQuerier is the subset of *pgxpool.Pool used by PostgresBackend.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgresBackend keeps entries in the client_state table, one row per key,
// partitioned by namespace.
type PostgresBackend struct {
	db        pgxQuerier
	namespace string
	timeout   time.Duration
}

// NewPostgresBackend constructs a backend over an established pool.
func NewPostgresBackend(pool *pgxpool.Pool, namespace string) *PostgresBackend {
	return newPostgresBackend(pool, namespace)
}

func newPostgresBackend(db pgxQuerier, namespace string) *PostgresBackend {
	return &PostgresBackend{db: db, namespace: namespace, timeout: defaultQueryTimeout}
}

// EnsureSchema creates the client_state table when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	query := `
CREATE TABLE IF NOT EXISTS client_state (
    namespace  TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    value      TEXT        NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (namespace, key)
);`

	if _, err := b.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure client_state schema: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Load(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	query := `
SELECT value
FROM client_state
WHERE namespace = $1 AND key = $2;`

	var value string
	if err := b.db.QueryRow(ctx, query, b.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load client state: %w", err)
	}
	return value, true, nil
}

func (b *PostgresBackend) Save(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	query := `
INSERT INTO client_state (namespace, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key)
DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();`

	if _, err := b.db.Exec(ctx, query, b.namespace, key, value); err != nil {
		return fmt.Errorf("save client state: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if _, err := b.db.Exec(ctx, `DELETE FROM client_state WHERE namespace = $1 AND key = $2;`, b.namespace, key); err != nil {
		return fmt.Errorf("remove client state: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if _, err := b.db.Exec(ctx, `DELETE FROM client_state WHERE namespace = $1;`, b.namespace); err != nil {
		return fmt.Errorf("clear client state: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.db.Ping(ctx)
}
