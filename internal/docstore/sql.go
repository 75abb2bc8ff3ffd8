package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const table = "documents"

// dialect captures what differs between SQL engines holding the documents table.
type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	schema      []string

	// jsonValue wraps an encoded document for insertion.
	jsonValue func(doc []byte) sq.Sqlizer
	// filter turns equality conditions into a predicate on the doc column.
	filter func(conds map[string]string) (sq.Sqlizer, error)
	// merge yields the doc column value after applying patch.
	merge func(patch []byte) sq.Sqlizer
	// bump yields the new updated_at, strictly greater than the stored one.
	bump func(nowMicros int64) sq.Sqlizer
	// dbName resolves the database name for diagnostics.
	dbName func(ctx context.Context, db *sqlx.DB) (string, error)
}

// SQLStore keeps every collection in one table, one row per document.
type SQLStore struct {
	db  *sqlx.DB
	d   dialect
	Now Clock
}

type docRow struct {
	ID        string `db:"id"`
	Doc       []byte `db:"doc"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

var returning = []string{"id", "doc", "created_at", "updated_at"}

func newSQLStore(ctx context.Context, db *sqlx.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, d: d}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("docstore: %s schema: %w", d.name, err)
		}
	}
	return s, nil
}

func (s *SQLStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	body, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	id := newID()
	now := s.Now.now().UnixMicro()

	q, args, err := sq.Insert(table).
		Columns("collection", "id", "doc", "created_at", "updated_at").
		Values(collection, id, s.d.jsonValue(body), now, now).
		PlaceholderFormat(s.d.placeholder).
		ToSql()
	if err != nil {
		return "", err
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return "", fmt.Errorf("docstore: insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *SQLStore) List(ctx context.Context, collection string, query Query) ([]Document, error) {
	b := sq.Select(returning...).
		From(table).
		Where(sq.Eq{"collection": collection}).
		PlaceholderFormat(s.d.placeholder)

	if len(query.Filter) > 0 {
		for f := range query.Filter {
			if err := validField(f); err != nil {
				return nil, err
			}
		}
		pred, err := s.d.filter(query.Filter)
		if err != nil {
			return nil, err
		}
		b = b.Where(pred)
	}

	switch query.OrderBy {
	case OrderCreatedAsc:
		b = b.OrderBy("created_at ASC", "seq ASC")
	default:
		b = b.OrderBy("seq ASC")
	}

	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []docRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}

	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		d, err := r.document()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ValidID(id); err != nil {
		return Document{}, err
	}

	q, args, err := sq.Select(returning...).
		From(table).
		Where(sq.Eq{"collection": collection, "id": id}).
		PlaceholderFormat(s.d.placeholder).
		ToSql()
	if err != nil {
		return Document{}, err
	}

	var r docRow
	if err := s.db.GetContext(ctx, &r, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("docstore: get %s/%s: %w", collection, id, err)
	}
	return r.document()
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, set Fields) (Document, error) {
	if err := ValidID(id); err != nil {
		return Document{}, err
	}
	patch, err := encodeFields(set)
	if err != nil {
		return Document{}, err
	}

	q, args, err := sq.Update(table).
		Set("doc", s.d.merge(patch)).
		Set("updated_at", s.d.bump(s.Now.now().UnixMicro())).
		Where(sq.Eq{"collection": collection, "id": id}).
		Suffix("RETURNING id, doc, created_at, updated_at").
		PlaceholderFormat(s.d.placeholder).
		ToSql()
	if err != nil {
		return Document{}, err
	}

	var r docRow
	if err := s.db.GetContext(ctx, &r, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("docstore: update %s/%s: %w", collection, id, err)
	}
	return r.document()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Name(ctx context.Context) (string, error) {
	return s.d.dbName(ctx, s.db)
}

func (s *SQLStore) Collections(ctx context.Context) ([]string, error) {
	q, args, err := sq.Select("DISTINCT collection").
		From(table).
		OrderBy("collection").
		PlaceholderFormat(s.d.placeholder).
		ToSql()
	if err != nil {
		return nil, err
	}
	var out []string
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("docstore: collections: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (r docRow) document() (Document, error) {
	fields := Fields{}
	if err := json.Unmarshal(r.Doc, &fields); err != nil {
		return Document{}, fmt.Errorf("docstore: decode %s: %w", r.ID, err)
	}
	return Document{
		ID:        r.ID,
		Fields:    fields,
		CreatedAt: time.UnixMicro(r.CreatedAt).UTC(),
		UpdatedAt: time.UnixMicro(r.UpdatedAt).UTC(),
	}, nil
}

func encodeFields(f Fields) ([]byte, error) {
	if f == nil {
		f = Fields{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode fields: %w", err)
	}
	return b, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
