package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/roleguard/internal/platform/db"
	"github.com/odyssey-erp/roleguard/internal/shared"
	"github.com/odyssey-erp/roleguard/internal/users"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a RepeatableRead transaction that is replayed on
// serialization failures.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{q: tx, members: users.NewMembership(tx)})
	})
}

// ListRoles returns all roles ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, display_name, version, created_at, updated_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, shared.Persistence("roles: list roles", err)
	}
	roles, err := pgx.CollectRows(rows, scanRole)
	if err != nil {
		return nil, shared.Persistence("roles: list roles", err)
	}
	caps, err := loadCapabilities(ctx, r.pool, nil)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		roles[i].Capabilities = withDefault(caps[roles[i].ID])
	}
	return roles, nil
}

// GetRole returns a single role.
func (r *Repository) GetRole(ctx context.Context, id string) (Role, error) {
	return getRole(ctx, r.pool, id, false)
}

// RoleCapabilities returns the capability maps of the existing roles in ids.
func (r *Repository) RoleCapabilities(ctx context.Context, ids []string) (map[string]map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]map[string]bool{}, nil
	}
	return loadCapabilities(ctx, r.pool, ids)
}

// CapabilityKeys returns every capability key stored on any role.
func (r *Repository) CapabilityKeys(ctx context.Context) ([]string, error) {
	return capabilityKeys(ctx, r.pool)
}

type txRepository struct {
	q       db.Querier
	members *users.Membership
}

func (t *txRepository) LockRole(ctx context.Context, id string) (Role, error) {
	return getRole(ctx, t.q, id, true)
}

func (t *txRepository) InsertRole(ctx context.Context, role Role) (Role, error) {
	err := t.q.QueryRow(ctx, `
		INSERT INTO roles (id, display_name, version) VALUES ($1, $2, 1)
		RETURNING version, created_at, updated_at`, role.ID, role.DisplayName).
		Scan(&role.Version, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Role{}, fmt.Errorf("roles: role %q already exists: %w", role.ID, shared.ErrConflict)
		}
		return Role{}, shared.Persistence("roles: insert role", err)
	}
	if err := t.insertCapabilities(ctx, role.ID, role.Capabilities); err != nil {
		return Role{}, err
	}
	role.Capabilities = withDefault(role.Capabilities)
	return role, nil
}

func (t *txRepository) InsertRoleIfMissing(ctx context.Context, role Role) (bool, error) {
	tag, err := t.q.Exec(ctx, `
		INSERT INTO roles (id, display_name, version) VALUES ($1, $2, 1)
		ON CONFLICT (id) DO NOTHING`, role.ID, role.DisplayName)
	if err != nil {
		return false, shared.Persistence("roles: seed role", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, t.insertCapabilities(ctx, role.ID, role.Capabilities)
}

func (t *txRepository) DeleteRole(ctx context.Context, id string) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return shared.Persistence("roles: delete role", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("roles: role %q: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (t *txRepository) SetCapabilities(ctx context.Context, id string, caps map[string]bool) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM role_capabilities WHERE role_id = $1`, id); err != nil {
		return shared.Persistence("roles: clear capabilities", err)
	}
	return t.insertCapabilities(ctx, id, caps)
}

func (t *txRepository) GrantCapability(ctx context.Context, id, capability string) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO role_capabilities (role_id, capability, granted) VALUES ($1, $2, TRUE)
		ON CONFLICT (role_id, capability) DO UPDATE SET granted = TRUE`, id, capability)
	if err != nil {
		return shared.Persistence("roles: grant capability", err)
	}
	return nil
}

func (t *txRepository) RevokeCapability(ctx context.Context, id, capability string) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM role_capabilities WHERE role_id = $1 AND capability = $2`, id, capability); err != nil {
		return shared.Persistence("roles: revoke capability", err)
	}
	return nil
}

func (t *txRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	if _, err := t.q.Exec(ctx, `UPDATE roles SET display_name = $2 WHERE id = $1`, id, name); err != nil {
		return shared.Persistence("roles: rename role", err)
	}
	return nil
}

func (t *txRepository) BumpVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := t.q.QueryRow(ctx, `
		UPDATE roles SET version = version + 1, updated_at = NOW() WHERE id = $1
		RETURNING version`, id).Scan(&version)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, fmt.Errorf("roles: role %q: %w", id, shared.ErrNotFound)
		}
		return 0, shared.Persistence("roles: bump version", err)
	}
	return version, nil
}

func (t *txRepository) ListRoleIDs(ctx context.Context) ([]string, error) {
	rows, err := t.q.Query(ctx, `SELECT id FROM roles ORDER BY id`)
	if err != nil {
		return nil, shared.Persistence("roles: list role ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, shared.Persistence("roles: list role ids", err)
	}
	return ids, nil
}

func (t *txRepository) CapabilityKeys(ctx context.Context) ([]string, error) {
	return capabilityKeys(ctx, t.q)
}

func (t *txRepository) MembersOf(ctx context.Context, roleID string) ([]int64, error) {
	return t.members.UsersWithRole(ctx, roleID)
}

func (t *txRepository) ReassignMember(ctx context.Context, userID int64, from, to string) error {
	return t.members.Replace(ctx, userID, from, to)
}

func (t *txRepository) insertCapabilities(ctx context.Context, id string, caps map[string]bool) error {
	if len(caps) == 0 {
		return nil
	}
	names := make([]string, 0, len(caps))
	flags := make([]bool, 0, len(caps))
	for name, granted := range caps {
		names = append(names, name)
		flags = append(flags, granted)
	}
	_, err := t.q.Exec(ctx, `
		INSERT INTO role_capabilities (role_id, capability, granted)
		SELECT $1, c.capability, c.granted FROM unnest($2::text[], $3::bool[]) AS c(capability, granted)`,
		id, names, flags)
	if err != nil {
		return shared.Persistence("roles: insert capabilities", err)
	}
	return nil
}

func getRole(ctx context.Context, q db.Querier, id string, forUpdate bool) (Role, error) {
	query := `SELECT id, display_name, version, created_at, updated_at FROM roles WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return Role{}, shared.Persistence("roles: get role", err)
	}
	role, err := pgx.CollectExactlyOneRow(rows, scanRole)
	if err != nil {
		if db.IsNoRows(err) {
			return Role{}, fmt.Errorf("roles: role %q: %w", id, shared.ErrNotFound)
		}
		return Role{}, shared.Persistence("roles: get role", err)
	}
	caps, err := loadCapabilities(ctx, q, []string{id})
	if err != nil {
		return Role{}, err
	}
	role.Capabilities = withDefault(caps[id])
	return role, nil
}

func scanRole(row pgx.CollectableRow) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.DisplayName, &role.Version, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

// loadCapabilities returns capability maps keyed by role id. A nil ids loads every role.
func loadCapabilities(ctx context.Context, q db.Querier, ids []string) (map[string]map[string]bool, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if ids == nil {
		rows, err = q.Query(ctx, `SELECT role_id, capability, granted FROM role_capabilities`)
	} else {
		rows, err = q.Query(ctx, `SELECT role_id, capability, granted FROM role_capabilities WHERE role_id = ANY($1)`, ids)
	}
	if err != nil {
		return nil, shared.Persistence("roles: load capabilities", err)
	}
	defer rows.Close()
	out := make(map[string]map[string]bool)
	for rows.Next() {
		var (
			roleID, capability string
			granted            bool
		)
		if err := rows.Scan(&roleID, &capability, &granted); err != nil {
			return nil, shared.Persistence("roles: scan capability", err)
		}
		if out[roleID] == nil {
			out[roleID] = make(map[string]bool)
		}
		out[roleID][capability] = granted
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("roles: load capabilities", err)
	}
	return out, nil
}

func capabilityKeys(ctx context.Context, q db.Querier) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT DISTINCT capability FROM role_capabilities ORDER BY capability`)
	if err != nil {
		return nil, shared.Persistence("roles: capability keys", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, shared.Persistence("roles: capability keys", err)
	}
	return keys, nil
}

func withDefault(caps map[string]bool) map[string]bool {
	if caps == nil {
		return map[string]bool{}
	}
	return caps
}
