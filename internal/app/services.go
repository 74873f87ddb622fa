package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/roleguard/internal/activity"
	"github.com/odyssey-erp/roleguard/internal/analytics"
	"github.com/odyssey-erp/roleguard/internal/audit"
	"github.com/odyssey-erp/roleguard/internal/capability"
	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/observability"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/roles"
	"github.com/odyssey-erp/roleguard/internal/shared"
	"github.com/odyssey-erp/roleguard/internal/users"
)

// Services holds the wired domain services shared by the HTTP server, the
// worker and the CLI.
type Services struct {
	Printer        *i18n.Printer
	Catalog        *capability.Catalog
	Audit          *audit.Service
	Monitor        *activity.Monitor
	Roles          *roles.Service
	Users          *users.Service
	Resolver       *rbac.Resolver
	PermCache      *rbac.PermissionCache
	AnalyticsCache *analytics.Cache
	Analytics      *analytics.Service
	Idempotency    *shared.IdempotencyStore
}

// ServiceDeps lists the infrastructure handles NewServices needs. Redis and
// Metrics may be nil; caching and failure counting are then disabled.
type ServiceDeps struct {
	Config  *Config
	Logger  *slog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Metrics *observability.Metrics
	Media   activity.MediaSource
}

// NewServices wires the audit pipeline, the role and membership stores and
// the caches invalidated by their mutations.
func NewServices(deps ServiceDeps) *Services {
	cfg := deps.Config
	if cfg == nil {
		cfg = &Config{AuditEnabled: true}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	printer := i18n.NewPrinter(cfg.Locale)
	auditService := audit.NewService(audit.NewRepository(deps.Pool), logger, audit.Config{
		Enabled:       cfg.AuditEnabled,
		RetentionDays: cfg.AuditRetentionDays,
	})

	opts := []activity.Option{}
	if deps.Metrics != nil {
		opts = append(opts, activity.WithFailureRecorder(deps.Metrics))
	}
	if deps.Media != nil {
		opts = append(opts, activity.WithMediaSource(deps.Media))
	}
	monitor := activity.NewMonitor(auditService, printer, logger, opts...)

	var permCache *rbac.PermissionCache
	var analyticsCache *analytics.Cache
	if deps.Redis != nil {
		permCache = rbac.NewPermissionCache(deps.Redis, cfg.RBACCacheTTL)
		analyticsCache = analytics.NewCache(deps.Redis, cfg.AnalyticsCacheTTL)
	}

	roleService := roles.NewService(roles.NewRepository(deps.Pool), monitor, logger, roles.Config{
		NewRoleGrantsRead: cfg.RoleNewGrantsRead,
	})
	userService := users.NewService(users.NewRepository(deps.Pool), monitor, logger)
	if permCache != nil {
		roleService.AddHook(permCache)
		userService.AddHook(permCache)
	}
	if analyticsCache != nil {
		roleService.AddHook(analyticsCache)
		userService.AddHook(analyticsCache)
	}

	return &Services{
		Printer:        printer,
		Catalog:        capability.NewCatalog(printer),
		Audit:          auditService,
		Monitor:        monitor,
		Roles:          roleService,
		Users:          userService,
		Resolver:       rbac.NewResolver(roleService, userService, permCache, logger),
		PermCache:      permCache,
		AnalyticsCache: analyticsCache,
		Analytics:      analytics.NewService(roleService, userService, auditService, analyticsCache, logger),
		Idempotency:    shared.NewIdempotencyStore(deps.Pool),
	}
}
