// Package rbac resolves effective capabilities and guards HTTP routes with them.
package rbac

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Resolver computes a user's effective capabilities from role state. Resolution
// is a strict whitelist: only capabilities explicitly granted by one of the
// user's roles are true, and no other grant source is consulted.
type Resolver struct {
	roles   RoleSource
	members MembershipReader
	cache   *PermissionCache
	logger  *slog.Logger
}

// NewResolver builds a Resolver. cache may be nil.
func NewResolver(roles RoleSource, members MembershipReader, cache *PermissionCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{roles: roles, members: members, cache: cache, logger: logger}
}

// Grants returns the compact resolution of userID, served from the cache when possible.
func (r *Resolver) Grants(ctx context.Context, userID int64) (Grants, error) {
	if grants, ok, err := r.cache.Load(ctx, userID); err != nil {
		r.logger.Warn("rbac: permission cache read failed", slog.Int64("user_id", userID), slog.Any("error", err))
	} else if ok {
		return grants, nil
	}
	gen, genErr := r.cache.Generation(ctx, userID)
	if genErr != nil {
		r.logger.Warn("rbac: permission cache generation failed", slog.Int64("user_id", userID), slog.Any("error", genErr))
	}
	grants, err := r.compute(ctx, userID)
	if err != nil {
		return Grants{}, err
	}
	if genErr == nil {
		if err := r.cache.Store(ctx, userID, gen, grants); err != nil {
			r.logger.Warn("rbac: permission cache write failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}
	return grants, nil
}

func (r *Resolver) compute(ctx context.Context, userID int64) (Grants, error) {
	roleIDs, err := r.members.Roles(ctx, userID)
	if err != nil {
		return Grants{}, err
	}
	if slices.Contains(roleIDs, shared.AdministratorRole) {
		return Grants{Administrator: true, Granted: []string{}}, nil
	}
	granted := []string{}
	if len(roleIDs) == 0 {
		return Grants{Granted: granted}, nil
	}
	caps, err := r.roles.RoleCapabilities(ctx, roleIDs)
	if err != nil {
		return Grants{}, err
	}
	union := make(map[string]struct{})
	for _, roleID := range roleIDs {
		for capability, ok := range caps[roleID] {
			if ok {
				union[capability] = struct{}{}
			}
		}
	}
	for capability := range union {
		granted = append(granted, capability)
	}
	sort.Strings(granted)
	return Grants{Granted: granted}, nil
}

// Resolve maps every catalog capability to whether userID holds it.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (map[string]bool, error) {
	grants, err := r.Grants(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := r.roles.AllCapabilities(ctx)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]bool, len(all))
	for _, capability := range all {
		resolved[capability] = grants.Has(capability)
	}
	return resolved, nil
}

// Can reports whether userID holds capability.
func (r *Resolver) Can(ctx context.Context, userID int64, capability string) (bool, error) {
	grants, err := r.Grants(ctx, userID)
	if err != nil {
		return false, err
	}
	return grants.Has(capability), nil
}

// EffectivePermissions returns the sorted capabilities granted to userID.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	grants, err := r.Grants(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !grants.Administrator {
		return grants.Granted, nil
	}
	return r.roles.AllCapabilities(ctx)
}
