package analytichttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

// MountRoutes registers dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		gr.Use(h.rbac.RequireAny(shared.CapManageOptions))
		gr.Get("/analytics", h.handleDashboard)
		gr.Get("/analytics/trends", h.handleTrends)
		gr.Get("/analytics/actors", h.handleActors)
	})
}
