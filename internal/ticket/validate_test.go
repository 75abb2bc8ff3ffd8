package ticket

import (
	"errors"
	"testing"
)

func TestParseCreateTicketDefaults(t *testing.T) {
	req, err := parseCreateTicket([]byte(`{"title":"VPN down","description":"Cannot connect","requester_email":"a@b.co","category":"network"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := req.fields()
	if f["priority"] != "medium" || f["status"] != "open" {
		t.Fatalf("expected defaults medium/open, got %v/%v", f["priority"], f["status"])
	}
	if a, ok := f["assignee"].(*string); !ok || a != nil {
		t.Fatalf("expected nil assignee, got %#v", f["assignee"])
	}
}

func TestParseCreateTicketCollectsAllFields(t *testing.T) {
	_, err := parseCreateTicket([]byte(`{"title":"x","priority":"asap"}`))

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	got := map[string]string{}
	for _, f := range verrs {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"title":           "must be at least 3 characters",
		"description":     "field required",
		"requester_email": "field required",
		"category":        "field required",
		"priority":        "must be one of: low, medium, high, urgent",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s: expected %q, got %q (all=%v)", k, v, got[k], got)
		}
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	var req CreateTicketRequest

	if err := decodeJSON([]byte("  "), &req); !errors.Is(err, errInvalidJSON) {
		t.Fatalf("expected errInvalidJSON for empty body, got %v", err)
	}
	if err := decodeJSON([]byte(`{"title":`), &req); !errors.Is(err, errInvalidJSON) {
		t.Fatalf("expected errInvalidJSON for truncated body, got %v", err)
	}

	var verrs ValidationErrors
	if err := decodeJSON([]byte(`[1,2]`), &req); !errors.As(err, &verrs) || verrs[0].Field != "body" {
		t.Fatalf("expected body validation error, got %v", err)
	}
	if err := decodeJSON([]byte(`{"priority":3}`), &req); !errors.As(err, &verrs) || verrs[0].Message != "must be of type string" {
		t.Fatalf("expected type validation error, got %v", err)
	}
}

func TestParseUpdateTicket(t *testing.T) {
	req, err := parseUpdateTicket([]byte(`{"status":"closed","bogus":1}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f := req.fields(); len(f) != 1 || f["status"] != "closed" {
		t.Fatalf("expected only status, got %v", f)
	}

	req, err = parseUpdateTicket([]byte(`{"assignee":null}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f := req.fields(); len(f) != 1 || f["assignee"] != nil {
		t.Fatalf("expected assignee cleared, got %v", f)
	}
	if v, ok := req.fields()["assignee"]; !ok || v != nil {
		t.Fatalf("expected explicit nil assignee, got %v (present=%v)", v, ok)
	}

	req, err = parseUpdateTicket([]byte(`{}`))
	if err != nil || !req.Empty() {
		t.Fatalf("expected empty update, got %v err=%v", req.fields(), err)
	}

	_, err = parseUpdateTicket([]byte(`{"category":null,"priority":null}`))
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 2 {
		t.Fatalf("expected two null errors, got %v", err)
	}
}

func TestParseCreateComment(t *testing.T) {
	if _, err := parseCreateComment([]byte(`{"ticket_id":"t","author":"","body":"ok"}`)); err != nil {
		t.Fatalf("expected empty author to be accepted, got %v", err)
	}
	if _, err := parseCreateComment([]byte(`{"ticket_id":"t","author":"bob","body":""}`)); err == nil {
		t.Fatalf("expected empty body to be rejected")
	}
}
