package db

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type SQLiteConfig struct {
	// Path is a filesystem path or ":memory:".
	Path string
}

// OpenSQLite opens a single-connection pool. SQLite serializes writers anyway,
// and one connection keeps ":memory:" databases coherent.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*sqlx.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")

	dsn := cfg.Path
	if cfg.Path != ":memory:" {
		dsn = "file:" + cfg.Path + "?" + q.Encode()
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ping(ctx, db, 0); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
