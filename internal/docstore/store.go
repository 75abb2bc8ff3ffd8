// Package docstore stores semi-structured documents in named collections.
//
// Every document is keyed by a store-generated UUID and carries created_at and
// updated_at timestamps maintained by the store itself. Backends differ only in
// where the bytes live; the contract below holds for all of them.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrMalformedID = errors.New("malformed document id")
	ErrUnavailable = errors.New("document store unavailable")
	ErrBadField    = errors.New("invalid field name")
)

// Fields is the body of a document. Values must be JSON-encodable.
type Fields map[string]any

type Document struct {
	ID        string
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode copies the document body into v through its JSON form.
func (d Document) Decode(v any) error {
	b, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

type OrderBy int

const (
	// OrderInsertion returns documents in the order they were created in the store.
	OrderInsertion OrderBy = iota
	// OrderCreatedAsc sorts by created_at, oldest first. Insertion order breaks ties.
	OrderCreatedAsc
)

type Query struct {
	// Filter holds exact-match conditions on top-level string fields.
	Filter  map[string]string
	OrderBy OrderBy
}

type Store interface {
	// Create inserts fields as a new document and returns its id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges set into the document and refreshes updated_at in one
	// atomic step, returning the new state.
	Update(ctx context.Context, collection, id string, set Fields) (Document, error)

	Ping(ctx context.Context) error
	// Name identifies the underlying database for diagnostics.
	Name(ctx context.Context) (string, error)
	Collections(ctx context.Context) ([]string, error)
	Close() error
}

// ValidID reports ErrMalformedID unless id is a document key in its canonical
// form: a lowercase, hyphenated UUID.
func ValidID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return nil
}

func newID() string { return uuid.NewString() }

var fieldNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validField(name string) error {
	if !fieldNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadField, name)
	}
	return nil
}

// Clock returns the current time. Stores truncate to microseconds.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Microsecond)
	}
	return c().UTC().Truncate(time.Microsecond)
}

// nextUpdate keeps updated_at strictly increasing even if the clock stalls.
func nextUpdate(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}
