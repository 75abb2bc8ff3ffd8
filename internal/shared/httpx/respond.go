package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/k1networth/itdesk/internal/shared/requestid"
)

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// FieldError points at one rejected input field by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: APIError{Code: code, Message: message, RequestID: requestid.Get(r.Context())},
	})
}

func WriteFieldErrors(w http.ResponseWriter, r *http.Request, status int, fields []FieldError) {
	WriteJSON(w, status, ErrorResponse{
		Error: APIError{
			Code:      "validation_error",
			Message:   "request validation failed",
			RequestID: requestid.Get(r.Context()),
			Fields:    fields,
		},
	})
}
