package users

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/roleguard/internal/platform/db"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool    *pgxpool.Pool
	members *Membership
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, members: NewMembership(pool)}
}

const selectUser = `
	SELECT u.id, u.login, u.display_name, u.email, u.created_at,
	       COALESCE(array_agg(ur.role_id ORDER BY ur.position, ur.role_id) FILTER (WHERE ur.role_id IS NOT NULL), '{}') AS roles
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id`

const userFilter = `
	WHERE ($1::text = '' OR EXISTS (SELECT 1 FROM user_roles f WHERE f.user_id = u.id AND f.role_id = $1))
	  AND ($2::text = '' OR u.login ILIKE $2 OR u.display_name ILIKE $2 OR u.email ILIKE $2)`

// GetUser loads a user with its roles.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, selectUser+` WHERE u.id = $1 GROUP BY u.id`, id)
	user, err := scanUser(row)
	if err != nil {
		if db.IsNoRows(err) {
			return User{}, shared.ErrNotFound
		}
		return User{}, shared.Persistence("users: get user", err)
	}
	return user, nil
}

// ListUsers returns one page of users ordered by id.
func (r *Repository) ListUsers(ctx context.Context, filters ListFilters, limit, offset int) ([]User, error) {
	rows, err := r.pool.Query(ctx, selectUser+userFilter+` GROUP BY u.id ORDER BY u.id LIMIT $3 OFFSET $4`,
		strings.TrimSpace(filters.Role), db.ContainsPattern(filters.Search), limit, offset)
	if err != nil {
		return nil, shared.Persistence("users: list users", err)
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, shared.Persistence("users: scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("users: list users", err)
	}
	return users, nil
}

// CountUsers counts users matching filters.
func (r *Repository) CountUsers(ctx context.Context, filters ListFilters) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+userFilter,
		strings.TrimSpace(filters.Role), db.ContainsPattern(filters.Search)).Scan(&total)
	if err != nil {
		return 0, shared.Persistence("users: count users", err)
	}
	return total, nil
}

// CreateUser inserts an account. Used by seeding and tests against a real database.
func (r *Repository) CreateUser(ctx context.Context, user User) (User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name, email) VALUES ($1, $2, $3)
		RETURNING id, created_at`, user.Login, user.DisplayName, user.Email).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, shared.ErrConflict
		}
		return User{}, shared.Persistence("users: create user", err)
	}
	return user, nil
}

// FindByLogin looks a user up by login name.
func (r *Repository) FindByLogin(ctx context.Context, login string) (User, error) {
	row := r.pool.QueryRow(ctx, selectUser+` WHERE u.login = $1 GROUP BY u.id`, login)
	user, err := scanUser(row)
	if err != nil {
		if db.IsNoRows(err) {
			return User{}, shared.ErrNotFound
		}
		return User{}, shared.Persistence("users: find by login", err)
	}
	return user, nil
}

// Roles returns the user's roles in membership order.
func (r *Repository) Roles(ctx context.Context, userID int64) ([]string, error) {
	return r.members.Roles(ctx, userID)
}

// UsersWithRole returns the ids of every member of roleID.
func (r *Repository) UsersWithRole(ctx context.Context, roleID string) ([]int64, error) {
	return r.members.UsersWithRole(ctx, roleID)
}

// AddRole adds a membership.
func (r *Repository) AddRole(ctx context.Context, userID int64, roleID string) (bool, error) {
	return r.members.Add(ctx, userID, roleID)
}

// RemoveRole drops a membership.
func (r *Repository) RemoveRole(ctx context.Context, userID int64, roleID string) (bool, error) {
	return r.members.Remove(ctx, userID, roleID)
}

// SetRole replaces every membership of the user with roleID in one transaction.
func (r *Repository) SetRole(ctx context.Context, userID int64, roleID string) ([]string, error) {
	var previous []string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		previous, err = NewMembership(tx).Set(ctx, userID, roleID)
		return err
	})
	return previous, err
}

// CountByRole returns the member count of every role with at least one member.
func (r *Repository) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id, COUNT(*) FROM user_roles GROUP BY role_id`)
	if err != nil {
		return nil, shared.Persistence("users: count by role", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, shared.Persistence("users: scan count", err)
		}
		counts[role] = n
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("users: count by role", err)
	}
	return counts, nil
}

// DisplayNames maps each existing id to its display name. Missing ids are absent.
func (r *Repository) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, display_name, login FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, shared.Persistence("users: display names", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id            int64
			display, name string
		)
		if err := rows.Scan(&id, &display, &name); err != nil {
			return nil, shared.Persistence("users: scan display name", err)
		}
		if display != "" {
			name = display
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("users: display names", err)
	}
	return names, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Login, &user.DisplayName, &user.Email, &user.CreatedAt, &user.Roles)
	return user, err
}
