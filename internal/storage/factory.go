package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Factory hands out request-scoped SQLite connections. The factory itself
// holds no open handles: each request opens a connection, runs its
// statements and closes it again, so there is no process-wide database
// state beyond this configuration.
type Factory struct {
	dsn string
}

// NewFactory prepares the database file and applies migrations, returning a
// factory for per-request connections.
func NewFactory(dbPath string) (*Factory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Factory{
		// Expenses reference users; enforce that at the engine level.
		dsn: dbPath + "?_pragma=foreign_keys(1)",
	}, nil
}

// Open returns a Store bound to a fresh connection. The caller must Close
// it on every exit path.
func (f *Factory) Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite", f.dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}
