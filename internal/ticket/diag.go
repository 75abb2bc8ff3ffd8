package ticket

import (
	"context"
	"net/http"

	"github.com/k1networth/itdesk/internal/shared/httpx"
)

const maxDiagCollections = 10

type Diagnostic struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnose probes the document store. It never fails; problems are reported
// in the result.
func (s *Store) Diagnose(ctx context.Context, urlConfigured bool) Diagnostic {
	d := Diagnostic{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      "not set",
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}
	if urlConfigured {
		d.DatabaseURL = "set"
	}

	if err := s.docs.Ping(ctx); err != nil {
		d.Database = "not available: " + truncate(err.Error(), 50)
		return d
	}
	d.ConnectionStatus = "connected"
	d.Database = "connected"

	if name, err := s.docs.Name(ctx); err == nil {
		d.DatabaseName = &name
	}

	names, err := s.docs.Collections(ctx)
	if err != nil {
		d.Database = "connected but error: " + truncate(err.Error(), 50)
		return d
	}
	if len(names) > maxDiagCollections {
		names = names[:maxDiagCollections]
	}
	d.Collections = names
	d.Database = "connected and working"
	return d
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "IT Ticketing System API is running"})
}

func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Store.Diagnose(r.Context(), h.DatabaseConfigured))
}
