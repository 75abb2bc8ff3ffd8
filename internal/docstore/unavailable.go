package docstore

import (
	"context"
	"errors"
	"fmt"
)

// Unavailable stands in for a store that could not be opened. Every operation
// fails with ErrUnavailable wrapping the original cause.
type Unavailable struct {
	Cause error
}

func (u Unavailable) err() error {
	if u.Cause == nil {
		return ErrUnavailable
	}
	if errors.Is(u.Cause, ErrUnavailable) {
		return u.Cause
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, u.Cause)
}

func (u Unavailable) Create(context.Context, string, Fields) (string, error) { return "", u.err() }

func (u Unavailable) List(context.Context, string, Query) ([]Document, error) { return nil, u.err() }

func (u Unavailable) Get(context.Context, string, string) (Document, error) {
	return Document{}, u.err()
}

func (u Unavailable) Update(context.Context, string, string, Fields) (Document, error) {
	return Document{}, u.err()
}

func (u Unavailable) Ping(context.Context) error                    { return u.err() }
func (u Unavailable) Name(context.Context) (string, error)          { return "", u.err() }
func (u Unavailable) Collections(context.Context) ([]string, error) { return nil, u.err() }
func (u Unavailable) Close() error                                  { return nil }
