// Package migrate applies the embedded schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const versionTable = "roleguard_schema_version"

// ErrFailedToApplyMigrations wraps any failure raised while migrating.
var ErrFailedToApplyMigrations = errors.New("platform/migrate: failed to apply migrations")

// Up brings the schema to the latest version. Safe to run on every startup.
func Up(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil && logger != nil {
			logger.ErrorContext(ctx, "close migration handle", slog.Any("error", err))
		}
	}(db)

	if err := configure(logger); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// Reset rolls back every migration. Used by the uninstall command only.
func Reset(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	if err := configure(logger); err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("platform/migrate: reset: %w", err)
	}
	return nil
}

func configure(logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetTableName(versionTable)
	if logger != nil {
		goose.SetLogger(slogAdapter{log: logger})
	}
	return goose.SetDialect("postgres")
}

// slogAdapter routes goose's Printf-style output through the application logger.
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Fatalf(format string, v ...any) {
	a.log.Error(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Printf(format string, v ...any) {
	a.log.Info(fmt.Sprintf(format, v...))
}
