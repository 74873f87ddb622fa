package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/roleguard/internal/capability"
	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Handler exposes the capability catalog and per-user resolution.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	roles    RoleSource
	catalog  *capability.Catalog
	rbac     Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver, roles RoleSource, catalog *capability.Catalog, rbac Middleware) *Handler {
	return &Handler{logger: logger, resolver: resolver, roles: roles, catalog: catalog, rbac: rbac}
}

// MountCapabilityRoutes registers /capabilities.
func (h *Handler) MountCapabilityRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.CapManageOptions))
		r.Get("/", h.listCapabilities)
	})
}

// MountUserRoutes registers /users/{id}/capabilities on the users router.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.CapListUsers, shared.CapPromoteUsers))
		r.Get("/{id}/capabilities", h.userCapabilities)
	})
}

type capabilityGroup struct {
	Name         string             `json:"name"`
	Title        string             `json:"title"`
	Capabilities []capability.Entry `json:"capabilities"`
}

var groupOrder = []string{
	capability.GroupBasic,
	capability.GroupPosts,
	capability.GroupPages,
	capability.GroupThemes,
	capability.GroupPlugins,
	capability.GroupUsers,
	capability.GroupCore,
	capability.GroupOther,
}

func (h *Handler) listCapabilities(w http.ResponseWriter, r *http.Request) {
	all, err := h.roles.AllCapabilities(r.Context())
	if err != nil {
		h.logger.Error("list capabilities", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	grouped := capability.Grouped(all)
	groups := make([]capabilityGroup, 0, len(groupOrder))
	for _, name := range groupOrder {
		ids := grouped[name]
		if len(ids) == 0 {
			continue
		}
		groups = append(groups, capabilityGroup{
			Name:         name,
			Title:        capability.GroupTitle(name),
			Capabilities: h.catalog.Entries(ids),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": groups, "total": len(all)})
}

type userCapabilities struct {
	UserID       int64           `json:"user_id"`
	Capabilities map[string]bool `json:"capabilities"`
	Granted      []string        `json:"granted"`
}

func (h *Handler) userCapabilities(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.NewValidationError("id", "must be a positive integer"))
		return
	}
	resolved, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	granted, err := h.resolver.EffectivePermissions(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userCapabilities{UserID: id, Capabilities: resolved, Granted: granted})
}
