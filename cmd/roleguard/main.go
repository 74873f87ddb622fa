package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/roleguard/cmd/roleguard/cli"
	"github.com/odyssey-erp/roleguard/internal/activity"
	analytichttp "github.com/odyssey-erp/roleguard/internal/analytics/http"
	"github.com/odyssey-erp/roleguard/internal/app"
	audithttp "github.com/odyssey-erp/roleguard/internal/audit/http"
	"github.com/odyssey-erp/roleguard/internal/observability"
	"github.com/odyssey-erp/roleguard/internal/platform/cache"
	"github.com/odyssey-erp/roleguard/internal/platform/db"
	"github.com/odyssey-erp/roleguard/internal/platform/migrate"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/roles"
	"github.com/odyssey-erp/roleguard/internal/users"
	"github.com/odyssey-erp/roleguard/jobs"
)

const usage = `usage: roleguard <command> [args]

commands:
  serve               run the admin HTTP API (default)
  migrate             apply database migrations
  seed                create missing default roles
  export [file]       write the role export document (stdout by default)
  import <file|->     merge a role export document
  restore-defaults    reset default roles to their stock capabilities
  uninstall           drop the audit log and every roleguard table
  jobs trigger <name> enqueue a background job now
  jobs stats          show the job queue state
`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Print(usage)
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	os.Exit(run(ctx, stop, command, args, cfg, logger))
}

func run(ctx context.Context, stop context.CancelFunc, command string, args []string, cfg *app.Config, logger *slog.Logger) int {
	if command == "jobs" {
		return runJobs(ctx, args, cfg)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return 1
	}
	defer pool.Close()

	switch command {
	case "migrate":
		if err := migrate.Up(ctx, pool, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			return 1
		}
		return 0
	case "uninstall":
		return uninstall(ctx, pool, cfg, logger)
	}

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	services := app.NewServices(app.ServiceDeps{
		Config:  cfg,
		Logger:  logger,
		Pool:    pool,
		Redis:   redisClient,
		Metrics: metrics,
	})
	rolesCLI, err := cli.NewRolesCLI(services.Roles)
	if err != nil {
		logger.Error("init roles cli", slog.Any("error", err))
		return 1
	}

	switch command {
	case "serve":
		return serve(ctx, stop, pool, cfg, logger, services, metrics)
	case "seed":
		return rolesCLI.SeedCommand(ctx, cli.Output{})
	case "export":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return rolesCLI.ExportCommand(ctx, path, cli.Output{})
	case "import":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return rolesCLI.ImportCommand(ctx, path, cli.Output{})
	case "restore-defaults":
		return rolesCLI.RestoreCommand(ctx, cli.Output{})
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}
}

func serve(ctx context.Context, stop context.CancelFunc, pool *pgxpool.Pool, cfg *app.Config, logger *slog.Logger, services *app.Services, metrics *observability.Metrics) int {
	if err := migrate.Up(ctx, pool, logger); err != nil {
		logger.Error("migrate", slog.Any("error", err))
		return 1
	}
	if created, err := services.Roles.EnsureDefaults(ctx); err != nil {
		logger.Error("seed default roles", slog.Any("error", err))
		return 1
	} else if len(created) > 0 {
		logger.Info("seeded default roles", slog.Any("roles", created))
	}
	if err := services.AnalyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	rbacMiddleware := rbac.Middleware{Authorizer: services.Resolver, Logger: logger}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Actors:           services.Users,
		RolesHandler:     roles.NewHandler(logger, services.Roles, rbacMiddleware).WithReplayGuard(services.Idempotency),
		UsersHandler:     users.NewHandler(logger, services.Users, rbacMiddleware),
		RBACHandler:      rbac.NewHandler(logger, services.Resolver, services.Roles, services.Catalog, rbacMiddleware),
		ActivityHandler:  activity.NewHandler(logger, services.Monitor, rbacMiddleware),
		AuditHandler:     audithttp.NewHandler(logger, services.Audit, rbacMiddleware),
		AnalyticsHandler: analytichttp.NewHandler(logger, services.Analytics, rbacMiddleware),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		return 1
	}
	return 0
}

func uninstall(ctx context.Context, pool *pgxpool.Pool, cfg *app.Config, logger *slog.Logger) int {
	services := app.NewServices(app.ServiceDeps{Config: cfg, Logger: logger, Pool: pool})
	if err := services.Audit.Truncate(ctx); err != nil {
		logger.Warn("truncate audit log", slog.Any("error", err))
	}
	if err := migrate.Reset(ctx, pool, logger); err != nil {
		logger.Error("reset schema", slog.Any("error", err))
		return 1
	}
	logger.Info("roleguard uninstalled")
	return 0
}

func runJobs(ctx context.Context, args []string, cfg *app.Config) int {
	if len(args) == 0 || (args[0] != "trigger" && args[0] != "stats") {
		fmt.Fprintf(os.Stderr, "usage: roleguard jobs trigger <%s>\n       roleguard jobs stats\n", strings.Join(jobs.TaskNames(), "|"))
		return 2
	}
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() { _ = client.Close() }()
	if args[0] == "stats" {
		return cli.StatsCommand(client, cli.Output{})
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	return cli.TriggerCommand(ctx, client, name, cli.Output{})
}

func connectRedis(ctx context.Context, cfg *app.Config, logger *slog.Logger) *redis.Client {
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, permission and analytics caches disabled", slog.Any("error", err))
		return nil
	}
	return client
}
