package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/roleguard/internal/activity"
	analytichttp "github.com/odyssey-erp/roleguard/internal/analytics/http"
	audithttp "github.com/odyssey-erp/roleguard/internal/audit/http"
	"github.com/odyssey-erp/roleguard/internal/observability"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/roles"
	"github.com/odyssey-erp/roleguard/internal/users"
	"github.com/odyssey-erp/roleguard/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Actors           ActorLookup
	RolesHandler     *roles.Handler
	UsersHandler     *users.Handler
	RBACHandler      *rbac.Handler
	ActivityHandler  *activity.Handler
	AuditHandler     *audithttp.Handler
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with roleguard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Actors:  params.Actors,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.UsersHandler != nil || params.RBACHandler != nil {
		r.Route("/users", func(r chi.Router) {
			if params.UsersHandler != nil {
				params.UsersHandler.MountRoutes(r)
			}
			if params.RBACHandler != nil {
				params.RBACHandler.MountUserRoutes(r)
			}
		})
	}
	if params.RBACHandler != nil {
		r.Route("/capabilities", params.RBACHandler.MountCapabilityRoutes)
	}
	if params.ActivityHandler != nil {
		r.Route("/activity", params.ActivityHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		params.AuditHandler.MountRoutes(r)
	}
	if params.AnalyticsHandler != nil {
		params.AnalyticsHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
