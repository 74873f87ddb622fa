package activity

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Handler exposes event ingestion for out-of-process hosts.
type Handler struct {
	logger  *slog.Logger
	monitor *Monitor
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, monitor *Monitor, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, monitor: monitor, rbac: rbac}
}

// MountRoutes registers ingestion routes. Some payloads name the user an entry is
// attributed to, so only accounts holding report_activity may post.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.CapReportActivity)).Post("/events", h.ingest)
}

type envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	var req envelope
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", err.Error()))
		return
	}
	ev, err := Decode(req.Kind, req.Payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.monitor.Publish(r.Context(), shared.ActorFromContext(r.Context()), ev)
	w.WriteHeader(http.StatusAccepted)
}
