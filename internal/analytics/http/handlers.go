package analytichttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/roleguard/internal/analytics"
	"github.com/odyssey-erp/roleguard/internal/platform/httpx"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

const (
	dashboardTrendDays   = 30
	dashboardActorsLimit = 5
	requestTimeout       = 2 * time.Second
)

// AnalyticsService defines the dashboard data contract used by the handler.
type AnalyticsService interface {
	Snapshot(ctx context.Context) (analytics.Snapshot, error)
	Latest(ctx context.Context) (analytics.Snapshot, error)
	Trends(ctx context.Context, days int) ([]analytics.TrendBucket, error)
	MostActiveActors(ctx context.Context, limit int) ([]analytics.ActorActivity, error)
}

// Handler coordinates HTTP requests for the admin dashboard.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	rbac    rbac.Middleware
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

type dashboard struct {
	Snapshot analytics.Snapshot        `json:"snapshot"`
	Trends   []analytics.TrendBucket   `json:"trends"`
	Actors   []analytics.ActorActivity `json:"actors"`
	// Stale marks a snapshot served from the last precomputed run.
	Stale bool `json:"stale,omitempty"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var data dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := h.service.Snapshot(gctx)
		if err == nil {
			data.Snapshot = snap
			return nil
		}
		stored, latestErr := h.service.Latest(gctx)
		if latestErr != nil {
			return err
		}
		h.logger.Warn("analytics: serving precomputed snapshot", slog.Any("error", err), slog.Time("generated_at", stored.GeneratedAt))
		data.Snapshot, data.Stale = stored, true
		return nil
	})
	g.Go(func() error {
		var err error
		data.Trends, err = h.service.Trends(gctx, dashboardTrendDays)
		return err
	})
	g.Go(func() error {
		var err error
		data.Actors, err = h.service.MostActiveActors(gctx, dashboardActorsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, err := positiveInt(r, "days")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	buckets, err := h.service.Trends(r.Context(), days)
	if err != nil {
		h.handleServerError(w, "load trends", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trends": buckets})
}

func (h *Handler) handleActors(w http.ResponseWriter, r *http.Request) {
	limit, err := positiveInt(r, "limit")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actors, err := h.service.MostActiveActors(r.Context(), limit)
	if err != nil {
		h.handleServerError(w, "load actors", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"actors": actors})
}

// positiveInt returns 0 when the parameter is absent so the service default applies.
func positiveInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, shared.NewValidationError(name, "must be a positive integer")
	}
	return v, nil
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.RespondError(w, err)
}
