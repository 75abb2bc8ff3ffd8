package docstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

func sqliteDialect(label string) dialect {
	return dialect{
		name:        "sqlite",
		placeholder: sq.Question,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
  seq        INTEGER PRIMARY KEY AUTOINCREMENT,
  collection TEXT    NOT NULL,
  id         TEXT    NOT NULL,
  doc        TEXT    NOT NULL CHECK (json_valid(doc)),
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE (collection, id)
)`,
			`CREATE INDEX IF NOT EXISTS documents_collection_created_idx ON documents (collection, created_at, seq)`,
		},
		jsonValue: func(doc []byte) sq.Sqlizer {
			return sq.Expr("?", string(doc))
		},
		// json_extract yields SQL text only for JSON strings, so numbers never
		// equal their string spelling.
		filter: func(conds map[string]string) (sq.Sqlizer, error) {
			and := sq.And{}
			for _, k := range sortedKeys(conds) {
				and = append(and, sq.Expr("json_extract(doc, ?) = ?", "$."+k, conds[k]))
			}
			return and, nil
		},
		// json_patch drops keys patched to null, which reads back as null anyway.
		merge: func(patch []byte) sq.Sqlizer {
			return sq.Expr("json_patch(doc, ?)", string(patch))
		},
		bump: func(now int64) sq.Sqlizer {
			return sq.Expr("MAX(?, updated_at + 1)", now)
		},
		dbName: func(context.Context, *sqlx.DB) (string, error) {
			return label, nil
		},
	}
}

// NewSQLite creates the documents table if needed. label names the database in
// diagnostics, usually the file name.
func NewSQLite(ctx context.Context, db *sqlx.DB, label string) (*SQLStore, error) {
	return newSQLStore(ctx, db, sqliteDialect(label))
}
