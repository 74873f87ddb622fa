package users

import (
	"context"

	"github.com/odyssey-erp/roleguard/internal/platform/db"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Membership manages user_roles rows. It runs against a pool or, when the caller
// needs the change to commit with other writes, against an open transaction.
type Membership struct {
	q db.Querier
}

// NewMembership wraps q.
func NewMembership(q db.Querier) *Membership {
	return &Membership{q: q}
}

// Roles returns the user's roles in membership order.
func (m *Membership) Roles(ctx context.Context, userID int64) ([]string, error) {
	rows, err := m.q.Query(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1 ORDER BY position, role_id`, userID)
	if err != nil {
		return nil, shared.Persistence("users: roles", err)
	}
	defer rows.Close()
	roles := make([]string, 0, 2)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, shared.Persistence("users: scan role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("users: roles", err)
	}
	return roles, nil
}

// UsersWithRole returns the ids of every member of roleID.
func (m *Membership) UsersWithRole(ctx context.Context, roleID string) ([]int64, error) {
	rows, err := m.q.Query(ctx, `SELECT user_id FROM user_roles WHERE role_id = $1 ORDER BY user_id`, roleID)
	if err != nil {
		return nil, shared.Persistence("users: members", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, shared.Persistence("users: scan member", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Persistence("users: members", err)
	}
	return ids, nil
}

// Add appends roleID to the user's memberships. It reports false when the user
// already held the role.
func (m *Membership) Add(ctx context.Context, userID int64, roleID string) (bool, error) {
	tag, err := m.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0) FROM user_roles WHERE user_id = $1
		ON CONFLICT (user_id, role_id) DO NOTHING`, userID, roleID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return false, shared.ErrNotFound
		}
		return false, shared.Persistence("users: add role", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Remove drops roleID from the user's memberships. It reports false when nothing changed.
func (m *Membership) Remove(ctx context.Context, userID int64, roleID string) (bool, error) {
	tag, err := m.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return false, shared.Persistence("users: remove role", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Replace swaps from for to, keeping the membership position. If the user already
// holds to, the old membership is simply dropped.
func (m *Membership) Replace(ctx context.Context, userID int64, from, to string) error {
	var position int
	err := m.q.QueryRow(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2 RETURNING position`,
		userID, from).Scan(&position)
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return shared.Persistence("users: replace role", err)
	}
	if _, err := m.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, position) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role_id) DO NOTHING`, userID, to, position); err != nil {
		return shared.Persistence("users: replace role", err)
	}
	return nil
}

// Set makes roleID the user's only role and returns the previous memberships.
func (m *Membership) Set(ctx context.Context, userID int64, roleID string) ([]string, error) {
	previous, err := m.Roles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := m.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return nil, shared.Persistence("users: set role", err)
	}
	if _, err := m.q.Exec(ctx, `INSERT INTO user_roles (user_id, role_id, position) VALUES ($1, $2, 0)`, userID, roleID); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.Persistence("users: set role", err)
	}
	return previous, nil
}
