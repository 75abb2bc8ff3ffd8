package ticket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/k1networth/itdesk/internal/shared/httpx"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationErrors lists every rejected field of one request.
type ValidationErrors []httpx.FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errInvalidJSON marks bodies that are not parseable JSON at all.
var errInvalidJSON = errors.New("invalid json")

// decodeJSON unmarshals body into v. Type mismatches come back as
// ValidationErrors, syntax problems as errInvalidJSON.
func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", errInvalidJSON)
	}
	err := json.Unmarshal(body, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return ValidationErrors{{Field: "body", Message: "must be a JSON object"}}
		}
		return ValidationErrors{{Field: typeErr.Field, Message: "must be of type " + jsonType(typeErr.Type)}}
	}
	return fmt.Errorf("%w: %v", errInvalidJSON, err)
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.Slice:
		return "array"
	default:
		return "object"
	}
}

// check runs struct-tag validation on v.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, httpx.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func parseCreateTicket(body []byte) (CreateTicketRequest, error) {
	var req CreateTicketRequest
	if err := decodeJSON(body, &req); err != nil {
		return CreateTicketRequest{}, err
	}
	if err := check(req); err != nil {
		return CreateTicketRequest{}, err
	}
	return req, nil
}

// nullableUpdateKeys may be explicitly set to null in a partial update.
var nullableUpdateKeys = map[string]bool{"assignee": true}

var updateKeys = []string{"title", "description", "requester_email", "category", "priority", "status", "assignee"}

func parseUpdateTicket(body []byte) (UpdateTicketRequest, error) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(body, &raw); err != nil {
		return UpdateTicketRequest{}, err
	}

	var req UpdateTicketRequest
	if err := decodeJSON(body, &req); err != nil {
		return UpdateTicketRequest{}, err
	}

	var nullErrs ValidationErrors
	for _, k := range updateKeys {
		v, ok := raw[k]
		if !ok || !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		if nullableUpdateKeys[k] {
			req.clearAssignee = true
			continue
		}
		nullErrs = append(nullErrs, httpx.FieldError{Field: k, Message: "may not be null"})
	}
	if len(nullErrs) > 0 {
		return UpdateTicketRequest{}, nullErrs
	}

	if err := check(req); err != nil {
		return UpdateTicketRequest{}, err
	}
	return req, nil
}

func parseCreateComment(body []byte) (CreateCommentRequest, error) {
	var req CreateCommentRequest
	if err := decodeJSON(body, &req); err != nil {
		return CreateCommentRequest{}, err
	}
	if err := check(req); err != nil {
		return CreateCommentRequest{}, err
	}
	return req, nil
}
