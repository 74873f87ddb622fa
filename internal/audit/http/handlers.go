package audithttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/roleguard/internal/audit"
	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
	dateLayout      = "2006-01-02"
)

// LogService defines the business contract for audit log reads.
type LogService interface {
	Page(ctx context.Context, f audit.Filters, page, pageSize int) (audit.Result, error)
	ActionTypes(ctx context.Context) ([]string, error)
	ExportCSV(ctx context.Context, f audit.Filters) ([]byte, error)
}

// Handler menangani permintaan audit log.
type Handler struct {
	logger  *slog.Logger
	service LogService
	rbac    rbac.Middleware
	now     func() time.Time
}

// NewHandler membuat handler audit baru.
func NewHandler(logger *slog.Logger, service LogService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		rbac:    rbac,
		now:     time.Now,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, page, pageSize, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	result, err := h.service.Page(r.Context(), filters, page, pageSize)
	if err != nil {
		h.handleServerError(w, "load audit log", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleActionTypes(w http.ResponseWriter, r *http.Request) {
	actions, err := h.service.ActionTypes(r.Context())
	if err != nil {
		h.handleServerError(w, "load action types", err)
		return
	}
	if actions == nil {
		actions = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"action_types": actions})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, _, _, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, err)
		return
	}
	csvBytes, err := h.service.ExportCSV(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "export audit log", err)
		return
	}
	filename := "audit-log-" + h.now().UTC().Format(dateLayout) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) parseFilters(r *http.Request) (audit.Filters, int, int, error) {
	q := r.URL.Query()
	var filters audit.Filters
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("from", "expected YYYY-MM-DD")
		}
		filters.DateFrom = parsed
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return audit.Filters{}, 0, 0, shared.NewValidationError("to", "expected YYYY-MM-DD")
		}
		filters.DateTo = parsed
	}
	if !filters.DateFrom.IsZero() && !filters.DateTo.IsZero() && filters.DateFrom.After(filters.DateTo) {
		return audit.Filters{}, 0, 0, shared.NewValidationError("range", "from is after to")
	}

	page := 1
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filters{}, 0, 0, shared.NewValidationError("page", "must be a positive integer")
		}
		page = parsed
	}
	pageSize := defaultPageSize
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filters{}, 0, 0, shared.NewValidationError("page_size", "must be a positive integer")
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		pageSize = parsed
	}
	filters.ActionType = strings.TrimSpace(q.Get("action"))
	filters.Search = strings.TrimSpace(q.Get("search"))
	return filters, page, pageSize, nil
}

func (h *Handler) handleFilterError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrValidation) {
		httpx.RespondError(w, err)
		return
	}
	h.handleServerError(w, "validate filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, shared.ErrValidation) {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Error(message, slog.Any("error", err))
	httpx.RespondError(w, err)
}
