package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It is safe for concurrent use.
type MemoryStore struct {
	Now Clock

	mu          sync.RWMutex
	collections map[string]*memCollection
	closed      bool
}

type memCollection struct {
	order []string
	byID  map[string]*memDoc
}

type memDoc struct {
	id        string
	fields    Fields
	createdAt time.Time
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := cloneFields(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrUnavailable
	}

	c, ok := s.collections[collection]
	if !ok {
		c = &memCollection{byID: make(map[string]*memDoc)}
		s.collections[collection] = c
	}

	id := newID()
	now := s.Now.now()
	c.byID[id] = &memDoc{id: id, fields: body, createdAt: now, updatedAt: now}
	c.order = append(c.order, id)
	return id, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for f := range q.Filter {
		if err := validField(f); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrUnavailable
	}

	c, ok := s.collections[collection]
	if !ok {
		return []Document{}, nil
	}

	matched := make([]*memDoc, 0, len(c.order))
	for _, id := range c.order {
		if d := c.byID[id]; matches(d.fields, q.Filter) {
			matched = append(matched, d)
		}
	}

	if q.OrderBy == OrderCreatedAsc {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].createdAt.Before(matched[j].createdAt)
		})
	}

	out := make([]Document, 0, len(matched))
	for _, d := range matched {
		out = append(out, d.document())
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ValidID(id); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Document{}, ErrUnavailable
	}

	d, ok := s.lookup(collection, id)
	if !ok {
		return Document{}, ErrNotFound
	}
	return d.document(), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, set Fields) (Document, error) {
	if err := ValidID(id); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	patch, err := cloneFields(set)
	if err != nil {
		return Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Document{}, ErrUnavailable
	}

	d, ok := s.lookup(collection, id)
	if !ok {
		return Document{}, ErrNotFound
	}
	for k, v := range patch {
		d.fields[k] = v
	}
	d.updatedAt = nextUpdate(d.updatedAt, s.Now.now())
	return d.document(), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrUnavailable
	}
	return nil
}

func (s *MemoryStore) Name(context.Context) (string, error) { return "memory", nil }

func (s *MemoryStore) Collections(ctx context.Context) ([]string, error) {
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.collections))
	for name := range s.collections {
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) lookup(collection, id string) (*memDoc, bool) {
	c, ok := s.collections[collection]
	if !ok {
		return nil, false
	}
	d, ok := c.byID[id]
	return d, ok
}

func (d *memDoc) document() Document {
	body := make(Fields, len(d.fields))
	for k, v := range d.fields {
		body[k] = v
	}
	return Document{ID: d.id, Fields: body, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}
}

func matches(fields Fields, filter map[string]string) bool {
	for k, want := range filter {
		got, ok := fields[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// cloneFields normalizes values to their JSON form so the memory store behaves
// like the SQL backends (e.g. typed strings come back as plain strings).
func cloneFields(f Fields) (Fields, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := Fields{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}
