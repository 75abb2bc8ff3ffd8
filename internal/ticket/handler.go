package ticket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/k1networth/itdesk/internal/docstore"
	"github.com/k1networth/itdesk/internal/shared/events"
	"github.com/k1networth/itdesk/internal/shared/httpx"
	"github.com/k1networth/itdesk/internal/shared/requestid"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Log    *slog.Logger
	Store  *Store
	Events events.Publisher

	// DatabaseConfigured reports whether a DATABASE_URL was supplied; shown by /test.
	DatabaseConfigured bool
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/test", h.Diagnostics)

	r.Route("/api/tickets", func(r chi.Router) {
		r.Post("/", h.CreateTicket)
		r.Get("/", h.ListTickets)
		r.Get("/{id}", h.GetTicket)
		r.Patch("/{id}", h.UpdateTicket)
		r.Post("/{id}/comments", h.CreateComment)
		r.Get("/{id}/comments", h.ListComments)
	})
}

type createdResponse struct {
	ID string `json:"id"`
}

type notUpdatedResponse struct {
	ID      string `json:"id"`
	Updated bool   `json:"updated"`
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, "ticket_create", err)
		return
	}
	req, err := parseCreateTicket(body)
	if err != nil {
		h.writeError(w, r, "ticket_create", err)
		return
	}

	id, err := h.Store.CreateTicket(r.Context(), req)
	if err != nil {
		h.writeError(w, r, "ticket_create", err)
		return
	}

	h.publish(r.Context(), "ticket.created", id, req.fields())
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tickets, err := h.Store.ListTickets(r.Context(), ListFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
	})
	if err != nil {
		h.writeError(w, r, "ticket_list", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tickets)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		h.writeError(w, r, "ticket_get", err)
		return
	}

	t, err := h.Store.GetTicketWithComments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "ticket_get", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		h.writeError(w, r, "ticket_update", err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, "ticket_update", err)
		return
	}
	req, err := parseUpdateTicket(body)
	if err != nil {
		h.writeError(w, r, "ticket_update", err)
		return
	}

	if req.Empty() {
		httpx.WriteJSON(w, http.StatusOK, notUpdatedResponse{ID: id, Updated: false})
		return
	}

	t, err := h.Store.UpdateTicket(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, "ticket_update", err)
		return
	}

	h.publish(r.Context(), "ticket.updated", id, req.fields())
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		h.writeError(w, r, "comment_create", err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, "comment_create", err)
		return
	}
	req, err := parseCreateComment(body)
	if err != nil {
		h.writeError(w, r, "comment_create", err)
		return
	}

	commentID, err := h.Store.CreateComment(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, "comment_create", err)
		return
	}

	h.publish(r.Context(), "comment.created", id, map[string]string{
		"comment_id": commentID,
		"author":     *req.Author,
	})
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: commentID})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		h.writeError(w, r, "comment_list", err)
		return
	}

	comments, err := h.Store.ListComments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "comment_list", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comments)
}

// ticketID reads the {id} path parameter and rejects malformed keys before
// any store access.
func ticketID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := docstore.ValidID(id); err != nil {
		return "", err
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ValidationErrors{{Field: "body", Message: "request body too large"}}
		}
		return nil, err
	}
	return b, nil
}

// publish emits a change event. Failures are logged, never returned: the write
// already succeeded.
func (h *Handler) publish(ctx context.Context, eventType, ticketID string, payload any) {
	if h.Events == nil {
		return
	}
	rid := requestid.Get(ctx)
	e, err := events.New(eventType, ticketCollection, ticketID, rid, payload)
	if err == nil {
		err = h.Events.Publish(ctx, e)
	}
	if err != nil {
		h.Log.Warn("event_publish_failed",
			slog.String("request_id", rid),
			slog.String("event_type", eventType),
			slog.String("ticket_id", ticketID),
			slog.String("err", err.Error()),
		)
	}
}
