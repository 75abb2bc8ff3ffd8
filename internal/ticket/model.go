package ticket

import (
	"time"

	"github.com/k1networth/itdesk/internal/docstore"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is a flat enum: any status may be set from any other.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

type Ticket struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequesterEmail string    `json:"requester_email"`
	Category       string    `json:"category"`
	Priority       Priority  `json:"priority"`
	Status         Status    `json:"status"`
	Assignee       *string   `json:"assignee"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TicketWithComments struct {
	Ticket
	Comments []Comment `json:"comments"`
}

type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pointer fields tell an absent key from an empty value.
type CreateTicketRequest struct {
	Title          *string   `json:"title" validate:"required,min=3,max=200"`
	Description    *string   `json:"description" validate:"required,min=5"`
	RequesterEmail *string   `json:"requester_email" validate:"required,email"`
	Category       *string   `json:"category" validate:"required"`
	Priority       *Priority `json:"priority" validate:"omitnil,oneof=low medium high urgent"`
	Status         *Status   `json:"status" validate:"omitnil,oneof=open in_progress resolved closed"`
	Assignee       *string   `json:"assignee"`
}

func (r CreateTicketRequest) fields() docstore.Fields {
	priority := PriorityMedium
	if r.Priority != nil {
		priority = *r.Priority
	}
	status := StatusOpen
	if r.Status != nil {
		status = *r.Status
	}
	return docstore.Fields{
		"title":           *r.Title,
		"description":     *r.Description,
		"requester_email": *r.RequesterEmail,
		"category":        *r.Category,
		"priority":        string(priority),
		"status":          string(status),
		"assignee":        r.Assignee,
	}
}

// UpdateTicketRequest is a partial update. Only keys present in the request
// body are applied.
type UpdateTicketRequest struct {
	Title          *string   `json:"title" validate:"omitnil,min=3,max=200"`
	Description    *string   `json:"description" validate:"omitnil,min=5"`
	RequesterEmail *string   `json:"requester_email" validate:"omitnil,email"`
	Category       *string   `json:"category"`
	Priority       *Priority `json:"priority" validate:"omitnil,oneof=low medium high urgent"`
	Status         *Status   `json:"status" validate:"omitnil,oneof=open in_progress resolved closed"`
	Assignee       *string   `json:"assignee"`

	// clearAssignee is set when the body carries "assignee": null.
	clearAssignee bool
}

// Empty reports whether no recognized field was supplied.
func (r UpdateTicketRequest) Empty() bool {
	return len(r.fields()) == 0
}

func (r UpdateTicketRequest) fields() docstore.Fields {
	set := docstore.Fields{}
	if r.Title != nil {
		set["title"] = *r.Title
	}
	if r.Description != nil {
		set["description"] = *r.Description
	}
	if r.RequesterEmail != nil {
		set["requester_email"] = *r.RequesterEmail
	}
	if r.Category != nil {
		set["category"] = *r.Category
	}
	if r.Priority != nil {
		set["priority"] = string(*r.Priority)
	}
	if r.Status != nil {
		set["status"] = string(*r.Status)
	}
	switch {
	case r.Assignee != nil:
		set["assignee"] = *r.Assignee
	case r.clearAssignee:
		set["assignee"] = nil
	}
	return set
}

type CreateCommentRequest struct {
	TicketID *string `json:"ticket_id" validate:"required"`
	Author   *string `json:"author" validate:"required"`
	Body     *string `json:"body" validate:"required,min=1"`
}

// ListFilter holds optional exact-match filters; empty values are ignored.
type ListFilter struct {
	Status   string
	Priority string
}

func (f ListFilter) query() docstore.Query {
	q := docstore.Query{Filter: map[string]string{}}
	if f.Status != "" {
		q.Filter["status"] = f.Status
	}
	if f.Priority != "" {
		q.Filter["priority"] = f.Priority
	}
	return q
}
