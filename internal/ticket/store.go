package ticket

import (
	"context"
	"errors"
	"fmt"

	"github.com/k1networth/itdesk/internal/docstore"
)

const (
	ticketCollection  = "ticket"
	commentCollection = "comment"
)

// Store maps tickets and comments onto document store collections.
type Store struct {
	docs docstore.Store
}

func NewStore(docs docstore.Store) *Store { return &Store{docs: docs} }

func (s *Store) CreateTicket(ctx context.Context, req CreateTicketRequest) (string, error) {
	return s.docs.Create(ctx, ticketCollection, req.fields())
}

func (s *Store) ListTickets(ctx context.Context, f ListFilter) ([]Ticket, error) {
	docs, err := s.docs.List(ctx, ticketCollection, f.query())
	if err != nil {
		return nil, err
	}
	out := make([]Ticket, 0, len(docs))
	for _, d := range docs {
		t, err := toTicket(d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (Ticket, error) {
	d, err := s.docs.Get(ctx, ticketCollection, id)
	if err != nil {
		return Ticket{}, notFound(err)
	}
	return toTicket(d)
}

// GetTicketWithComments embeds the ticket's comments, oldest first.
func (s *Store) GetTicketWithComments(ctx context.Context, id string) (TicketWithComments, error) {
	t, err := s.GetTicket(ctx, id)
	if err != nil {
		return TicketWithComments{}, err
	}
	comments, err := s.listComments(ctx, id, docstore.OrderCreatedAsc)
	if err != nil {
		return TicketWithComments{}, err
	}
	return TicketWithComments{Ticket: t, Comments: comments}, nil
}

// UpdateTicket applies a non-empty partial update and returns the new state.
func (s *Store) UpdateTicket(ctx context.Context, id string, req UpdateTicketRequest) (Ticket, error) {
	set := req.fields()
	if len(set) == 0 {
		return Ticket{}, errors.New("empty ticket update")
	}
	d, err := s.docs.Update(ctx, ticketCollection, id, set)
	if err != nil {
		return Ticket{}, notFound(err)
	}
	return toTicket(d)
}

// CreateComment checks that the ticket exists, then inserts the comment.
// The two steps are not atomic; tickets are never deleted, so the gap is
// harmless today.
func (s *Store) CreateComment(ctx context.Context, ticketID string, req CreateCommentRequest) (string, error) {
	if _, err := s.docs.Get(ctx, ticketCollection, ticketID); err != nil {
		return "", notFound(err)
	}
	return s.docs.Create(ctx, commentCollection, docstore.Fields{
		"ticket_id": ticketID,
		"author":    *req.Author,
		"body":      *req.Body,
	})
}

// ListComments returns the ticket's comments in insertion order.
func (s *Store) ListComments(ctx context.Context, ticketID string) ([]Comment, error) {
	return s.listComments(ctx, ticketID, docstore.OrderInsertion)
}

func (s *Store) listComments(ctx context.Context, ticketID string, order docstore.OrderBy) ([]Comment, error) {
	docs, err := s.docs.List(ctx, commentCollection, docstore.Query{
		Filter:  map[string]string{"ticket_id": ticketID},
		OrderBy: order,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Comment, 0, len(docs))
	for _, d := range docs {
		c, err := toComment(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func toTicket(d docstore.Document) (Ticket, error) {
	var t Ticket
	if err := d.Decode(&t); err != nil {
		return Ticket{}, err
	}
	t.ID = d.ID
	t.CreatedAt = d.CreatedAt
	t.UpdatedAt = d.UpdatedAt
	return t, nil
}

func toComment(d docstore.Document) (Comment, error) {
	var c Comment
	if err := d.Decode(&c); err != nil {
		return Comment{}, err
	}
	c.ID = d.ID
	c.CreatedAt = d.CreatedAt
	c.UpdatedAt = d.UpdatedAt
	return c, nil
}
