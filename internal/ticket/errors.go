package ticket

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/k1networth/itdesk/internal/docstore"
	"github.com/k1networth/itdesk/internal/shared/httpx"
	"github.com/k1networth/itdesk/internal/shared/requestid"
)

var ErrNotFound = errors.New("ticket not found")

// maxErrorDetail bounds raw store messages echoed to clients.
const maxErrorDetail = 200

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// writeError maps err onto the HTTP error contract. op names the failing
// operation in logs.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		httpx.WriteFieldErrors(w, r, http.StatusUnprocessableEntity, verrs)
	case errors.Is(err, errInvalidJSON):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", "Ticket not found")
	case errors.Is(err, docstore.ErrMalformedID):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid ticket id")
	case errors.Is(err, docstore.ErrUnavailable):
		h.Log.Error(op+"_failed",
			slog.String("request_id", requestid.Get(r.Context())),
			slog.String("err", err.Error()),
		)
		httpx.WriteError(w, r, http.StatusInternalServerError, "store_unavailable", truncate(err.Error(), maxErrorDetail))
	default:
		h.Log.Error(op+"_failed",
			slog.String("request_id", requestid.Get(r.Context())),
			slog.String("err", err.Error()),
		)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", truncate(err.Error(), maxErrorDetail))
	}
}
