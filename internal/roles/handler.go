package roles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

const (
	exchangeRateLimit  = 10
	exchangeRateWindow = time.Minute
	maxImportBytes     = 1 << 20
)

// IdempotencyHeader lets clients make an import safe to retry.
const IdempotencyHeader = "Idempotency-Key"

// ReplayGuard rejects an import whose idempotency key was already processed.
// shared.IdempotencyStore satisfies it.
type ReplayGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Handler manages role management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
	replay    ReplayGuard
	now       func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New(), now: time.Now}
}

// WithReplayGuard enables Idempotency-Key handling on import.
func (h *Handler) WithReplayGuard(guard ReplayGuard) *Handler {
	h.replay = guard
	return h
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.CapManageOptions))
		r.Get("/", h.listRoles)
		r.Post("/", h.createRole)
		r.Post("/restore", h.restoreDefaults)
		r.Get("/{id}", h.getRole)
		r.Patch("/{id}", h.renameRole)
		r.Delete("/{id}", h.deleteRole)
		r.Put("/{id}/capabilities", h.replaceCapabilities)
		r.Put("/{id}/capabilities/{capability}", h.grantCapability)
		r.Delete("/{id}/capabilities/{capability}", h.revokeCapability)
		r.Post("/{id}/clone", h.cloneRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(httpx.Limiter(exchangeRateLimit, exchangeRateWindow))
		r.With(h.rbac.RequireAll(shared.CapManageOptions, shared.CapExport)).Get("/export", h.exportRoles)
		r.With(h.rbac.RequireAll(shared.CapManageOptions, shared.CapImport)).Post("/import", h.importRoles)
	})
}

type createRoleRequest struct {
	ID          string `json:"id" validate:"required,max=64"`
	DisplayName string `json:"display_name" validate:"required,max=191"`
}

type renameRoleRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=191"`
}

type replaceCapabilitiesRequest struct {
	Capabilities []string `json:"capabilities" validate:"required"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if roles == nil {
		roles = []Role{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, err := h.service.CreateRole(r.Context(), shared.ActorFromContext(r.Context()), req.ID, req.DisplayName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) renameRole(w http.ResponseWriter, r *http.Request) {
	var req renameRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.RenameRole(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.DisplayName); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) replaceCapabilities(w http.ResponseWriter, r *http.Request) {
	var req replaceCapabilitiesRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ReplaceCapabilities(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Capabilities); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) grantCapability(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

func (h *Handler) revokeCapability(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, granted bool) {
	err := h.service.ToggleCapability(r.Context(), shared.ActorFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "capability"), granted)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) cloneRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, err := h.service.CloneRole(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.ID, req.DisplayName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) restoreDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RestoreDefaults(r.Context(), shared.ActorFromContext(r.Context())); err != nil {
		h.logger.Error("restore default roles failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) exportRoles(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Export(r.Context())
	if err != nil {
		h.logger.Error("export roles failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(h.now())+`"`)
	httpx.JSON(w, http.StatusOK, export)
}

func (h *Handler) importRoles(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", err.Error()))
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key != "" && h.replay != nil {
		if err := h.replay.CheckAndInsert(r.Context(), key, "roles.import"); err != nil {
			if !errors.Is(err, shared.ErrConflict) {
				h.logger.Error("check import idempotency key", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
	}
	result, err := h.service.Import(r.Context(), shared.ActorFromContext(r.Context()), raw)
	if err != nil {
		if key != "" && h.replay != nil {
			// A failed import mutates nothing, so the key may be reused.
			if delErr := h.replay.Delete(context.WithoutCancel(r.Context()), key); delErr != nil {
				h.logger.Warn("release import idempotency key", slog.Any("error", delErr))
			}
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", err.Error()))
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			httpx.RespondError(w, shared.NewValidationError(verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		httpx.RespondError(w, shared.NewValidationError("body", err.Error()))
		return false
	}
	return true
}
