package docstore

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/k1networth/itdesk/internal/shared/db"
)

// Open picks a backend from the URL scheme:
//
//	postgres://…, postgresql://…   PostgreSQL (JSONB)
//	sqlite://path, file:path       SQLite file
//	memory://                      in-process
func Open(ctx context.Context, rawURL string) (Store, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is empty", ErrUnavailable)
	}

	scheme, rest, _ := strings.Cut(rawURL, ":")
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		pg, err := db.OpenPostgres(ctx, db.PostgresConfig{DatabaseURL: rawURL, ApplicationName: "itdesk"})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		s, err := NewPostgres(ctx, pg)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		return s, nil

	case "sqlite", "file":
		path := sqlitePath(scheme, rest)
		lite, err := db.OpenSQLite(ctx, db.SQLiteConfig{Path: path})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		s, err := NewSQLite(ctx, lite, filepath.Base(path))
		if err != nil {
			_ = lite.Close()
			return nil, err
		}
		return s, nil

	case "memory":
		return NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("docstore: unsupported database url scheme %q", scheme)
}

func sqlitePath(scheme, rest string) string {
	if strings.EqualFold(scheme, "file") {
		p, _, _ := strings.Cut(rest, "?")
		return p
	}
	if u, err := url.Parse(scheme + ":" + rest); err == nil && u.Host == "" && u.Path != "" {
		return u.Path
	}
	// sqlite://relative/path.db puts the first segment in Host.
	p, _, _ := strings.Cut(strings.TrimPrefix(rest, "//"), "?")
	return p
}
