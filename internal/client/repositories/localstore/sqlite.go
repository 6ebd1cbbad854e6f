package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rackaudit/internal/common"
	"github.com/dmitrijs2005/rackaudit/internal/dbx"
)

// SQLiteRepository implements Repository over the kv table.
type SQLiteRepository struct {
	db dbx.DBTX
	// conn is nil when the repository is already bound to a transaction.
	conn dbx.TxBeginner
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, conn: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("kv[%s]: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, key string, value []byte) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to create kv[%s]: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create kv[%s]: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("kv[%s]: %w", key, common.ErrKeyExists)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM kv ORDER BY key`
	args := []any{}
	if prefix != "" {
		query = `SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`
		args = append(args, len(prefix), prefix)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan kv key: %w", err)
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv keys: %w", err)
	}
	return keys, nil
}

func (r *SQLiteRepository) Atomically(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	if r.conn == nil {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, r.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &SQLiteRepository{db: tx})
	})
}
