// Package localdb opens the on-device SQLite database and applies the
// embedded goose migrations.
package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/rackaudit/internal/client/migrations"
	"github.com/dmitrijs2005/rackaudit/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// RunMigrations brings the local schema up to date. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the SQLite file at path and migrates it.
// A single connection is used: SQLite serializes writers anyway, and it
// keeps ":memory:" databases coherent.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping local db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
