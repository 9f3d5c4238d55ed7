package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// BlobRepo stores opaque JSON snapshots by key.
type BlobRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewBlobRepo(db *sql.DB) *BlobRepo {
	return &BlobRepo{db: db, now: time.Now}
}

// Load returns the value stored under key, or nil, nil when there is none.
func (r *BlobRepo) Load(ctx context.Context, key string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("kv load %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *BlobRepo) Save(ctx context.Context, key string, value []byte) error {
	if err := upsert(ctx, r.db, key, value, r.now().UTC()); err != nil {
		return fmt.Errorf("kv save %s: %w", key, err)
	}
	return nil
}

// SaveMany writes every value in one transaction.
func (r *BlobRepo) SaveMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := r.now().UTC()
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, k := range keys {
			if err := upsert(ctx, tx, k, values[k], now); err != nil {
				return fmt.Errorf("kv save %s: %w", k, err)
			}
		}
		return nil
	})
}

func (r *BlobRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored entries ordered by key.
func (r *BlobRepo) Keys(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, length(value), updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Size, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("kv keys scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, key string, value []byte, at time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), at)
	return err
}
