package audit

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/roleguard/internal/platform/db"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// PgRepository menyimpan audit log di PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository membuat repository audit baru.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const entryFilter = `
	WHERE ($1::text = '' OR action = $1)
	  AND ($2::date IS NULL OR created_at::date >= $2::date)
	  AND ($3::date IS NULL OR created_at::date <= $3::date)
	  AND ($4::text = '' OR description ILIKE $4)`

func filterArgs(f Filters) []any {
	return []any{strings.TrimSpace(f.ActionType), toPgDate(f.DateFrom), toPgDate(f.DateTo), db.ContainsPattern(f.Search)}
}

// Insert menulis satu entri; created_at dipotong ke detik oleh default kolom.
func (r *PgRepository) Insert(ctx context.Context, entry Entry) (Entry, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO audit_log (user_id, action, description) VALUES ($1, $2, $3) RETURNING id, created_at`,
		entry.ActorID, entry.Action, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return Entry{}, shared.Persistence("audit: insert", err)
	}
	return entry, nil
}

// Query mengambil entri terbaru lebih dulu.
func (r *PgRepository) Query(ctx context.Context, f Filters) ([]Entry, error) {
	args := append(filterArgs(f), f.Limit, f.Offset)
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, action, description, created_at
		FROM audit_log`+entryFilter+`
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`, args...)
	if err != nil {
		return nil, shared.Persistence("audit: query", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, shared.Persistence("audit: scan", err)
	}
	return entries, nil
}

// Count menghitung entri yang cocok dengan filter (tanpa limit/offset).
func (r *PgRepository) Count(ctx context.Context, f Filters) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`+entryFilter, filterArgs(f)...).Scan(&total); err != nil {
		return 0, shared.Persistence("audit: count", err)
	}
	return total, nil
}

// ActionTypes mengembalikan action yang pernah tercatat, terurut.
func (r *PgRepository) ActionTypes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT action FROM audit_log ORDER BY action`)
	if err != nil {
		return nil, shared.Persistence("audit: action types", err)
	}
	actions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, shared.Persistence("audit: scan action types", err)
	}
	return actions, nil
}

// Purge menghapus entri yang lebih tua dari before.
func (r *PgRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_log WHERE created_at < $1`, before)
	if err != nil {
		return 0, shared.Persistence("audit: purge", err)
	}
	return tag.RowsAffected(), nil
}

// Truncate mengosongkan tabel. Hanya dipakai saat uninstall.
func (r *PgRepository) Truncate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE audit_log RESTART IDENTITY`); err != nil {
		return shared.Persistence("audit: truncate", err)
	}
	return nil
}

// DailyActionCounts mengelompokkan entri sejak since per hari dan action.
func (r *PgRepository) DailyActionCounts(ctx context.Context, since time.Time) ([]DailyCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT created_at::date AS day, action, COUNT(*)
		FROM audit_log
		WHERE created_at >= $1
		GROUP BY day, action
		ORDER BY day, action`, since)
	if err != nil {
		return nil, shared.Persistence("audit: daily counts", err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (DailyCount, error) {
		var c DailyCount
		err := row.Scan(&c.Day, &c.Action, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, shared.Persistence("audit: scan daily counts", err)
	}
	return counts, nil
}

// ActorCounts meranking aktor terautentikasi berdasarkan jumlah entri.
func (r *PgRepository) ActorCounts(ctx context.Context, limit, offset int) ([]ActorCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, COUNT(*) AS total
		FROM audit_log
		WHERE user_id > 0
		GROUP BY user_id
		ORDER BY total DESC, user_id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, shared.Persistence("audit: actor counts", err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ActorCount, error) {
		var c ActorCount
		err := row.Scan(&c.ActorID, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, shared.Persistence("audit: scan actor counts", err)
	}
	return counts, nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ActorID, &e.Action, &e.Description, &e.CreatedAt)
	return e, err
}

func toPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}
