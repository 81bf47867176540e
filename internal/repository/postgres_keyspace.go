package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresKeySpace struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewPostgresKeySpace returns a key space over the session_kv table.
func NewPostgresKeySpace(pool *pgxpool.Pool, prefix string) KeySpace {
	return &postgresKeySpace{pool: pool, prefix: prefix}
}

func (r *postgresKeySpace) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM session_kv WHERE key=$1`

	var value string
	if err := r.pool.QueryRow(ctx, query, r.prefix+key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *postgresKeySpace) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO session_kv (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, r.prefix+key, value)
	return err
}

func (r *postgresKeySpace) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `DELETE FROM session_kv WHERE key = ANY($1)`

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.prefix + key
	}
	_, err := r.pool.Exec(ctx, query, full)
	return err
}

func (r *postgresKeySpace) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}
