package docstore

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: sq.Dollar,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
  seq        BIGSERIAL PRIMARY KEY,
  collection TEXT      NOT NULL,
  id         TEXT      NOT NULL,
  doc        JSONB     NOT NULL,
  created_at BIGINT    NOT NULL,
  updated_at BIGINT    NOT NULL,
  UNIQUE (collection, id)
)`,
		`CREATE INDEX IF NOT EXISTS documents_collection_created_idx ON documents (collection, created_at, seq)`,
		`CREATE INDEX IF NOT EXISTS documents_doc_idx ON documents USING GIN (doc jsonb_path_ops)`,
	},
	jsonValue: func(doc []byte) sq.Sqlizer {
		return sq.Expr("CAST(? AS jsonb)", string(doc))
	},
	// Containment on a {field: value} object only matches string values and
	// can use the GIN index.
	filter: func(conds map[string]string) (sq.Sqlizer, error) {
		b, err := json.Marshal(conds)
		if err != nil {
			return nil, err
		}
		return sq.Expr("doc @> CAST(? AS jsonb)", string(b)), nil
	},
	merge: func(patch []byte) sq.Sqlizer {
		return sq.Expr("doc || CAST(? AS jsonb)", string(patch))
	},
	bump: func(now int64) sq.Sqlizer {
		return sq.Expr("GREATEST(?, updated_at + 1)", now)
	},
	dbName: func(ctx context.Context, db *sqlx.DB) (string, error) {
		var name string
		err := db.GetContext(ctx, &name, `SELECT current_database()`)
		return name, err
	},
}

// NewPostgres creates the documents table if needed and returns a store on db.
func NewPostgres(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db, postgresDialect)
}
