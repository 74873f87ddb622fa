package audithttp

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

const rateLimit = 10
const rateWindow = time.Minute

// MountRoutes mendaftarkan endpoint audit log dan ekspor CSV.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		gr.Use(h.rbac.RequireAny(shared.CapManageOptions))
		gr.Get("/audit", h.handleList)
		gr.Get("/audit/action-types", h.handleActionTypes)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(httpx.Limiter(rateLimit, rateWindow))
		gr.Use(h.rbac.RequireAll(shared.CapManageOptions, shared.CapExport))
		gr.Get("/audit/export.csv", h.handleExport)
	})
}
