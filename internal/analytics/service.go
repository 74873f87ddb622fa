// Package analytics aggregates role, membership and audit data for the admin dashboard.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/roleguard/internal/audit"
	"github.com/odyssey-erp/roleguard/internal/roles"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

const recentChanges = 10

// RoleSource lists every role with its capability map.
type RoleSource interface {
	ListRoles(ctx context.Context) ([]roles.Role, error)
}

// MemberSource exposes membership counts and user display names.
type MemberSource interface {
	CountByRole(ctx context.Context) (map[string]int, error)
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// AuditSource exposes the audit log aggregates.
type AuditSource interface {
	Recent(ctx context.Context, n int) ([]audit.Entry, error)
	DailyActionCounts(ctx context.Context, since time.Time) ([]audit.DailyCount, error)
	ActorCounts(ctx context.Context, limit, offset int) ([]audit.ActorCount, error)
}

// RoleUsers is the member count of one role.
type RoleUsers struct {
	RoleID      string `json:"role_id"`
	DisplayName string `json:"display_name"`
	Users       int    `json:"users"`
}

// CapabilityUsage counts the roles granting a capability.
type CapabilityUsage struct {
	Capability string `json:"capability"`
	Roles      int    `json:"roles"`
}

// Snapshot is the dashboard summary.
type Snapshot struct {
	RoleCount       int               `json:"role_count"`
	UsersPerRole    []RoleUsers       `json:"users_per_role"`
	CapabilityUsage []CapabilityUsage `json:"capability_usage"`
	RecentChanges   []audit.Entry     `json:"recent_changes"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// Service coordinates analytics query execution with the cache layer.
type Service struct {
	roles   RoleSource
	members MemberSource
	audit   AuditSource
	cache   *Cache
	logger  *slog.Logger
	group   singleflight.Group
	now     func() time.Time
}

// NewService wires the sources with a Cache helper. cache may be nil.
func NewService(roles RoleSource, members MemberSource, audit AuditSource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{roles: roles, members: members, audit: audit, cache: cache, logger: logger, now: time.Now}
}

// Snapshot returns the cached summary, building it at most once per cache version
// across concurrent callers.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.cache == nil {
		return s.buildSnapshot(ctx)
	}
	key, err := s.cache.BuildKey(ctx, keySnapshot())
	if err != nil {
		s.logger.Warn("analytics: cache unavailable", slog.Any("error", err))
		return s.buildSnapshot(ctx)
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var snap Snapshot
		err := s.cache.FetchJSON(ctx, key, &snap, func(ctx context.Context) (interface{}, error) {
			return s.buildSnapshot(ctx)
		})
		return snap, err
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Precompute builds a fresh snapshot and stores it as the latest one.
func (s *Service) Precompute(ctx context.Context) (Snapshot, error) {
	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.cache.StoreLatest(ctx, snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Latest returns the last precomputed snapshot, or shared.ErrNotFound when the
// snapshot job has not stored one yet.
func (s *Service) Latest(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	found, err := s.cache.Latest(ctx, &snap)
	if err != nil {
		return Snapshot{}, err
	}
	if !found {
		return Snapshot{}, fmt.Errorf("%w: no precomputed snapshot", shared.ErrNotFound)
	}
	return snap, nil
}

func (s *Service) buildSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		allRoles []roles.Role
		counts   map[string]int
		recent   []audit.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allRoles, err = s.roles.ListRoles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.members.CountByRole(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.audit.Recent(gctx, recentChanges)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if recent == nil {
		recent = []audit.Entry{}
	}
	return Snapshot{
		RoleCount:       len(allRoles),
		UsersPerRole:    usersPerRole(allRoles, counts),
		CapabilityUsage: capabilityUsage(allRoles),
		RecentChanges:   recent,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

func usersPerRole(all []roles.Role, counts map[string]int) []RoleUsers {
	out := make([]RoleUsers, 0, len(all))
	for _, role := range all {
		out = append(out, RoleUsers{RoleID: role.ID, DisplayName: role.DisplayName, Users: counts[role.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Users != out[j].Users {
			return out[i].Users > out[j].Users
		}
		return out[i].RoleID < out[j].RoleID
	})
	return out
}

func capabilityUsage(all []roles.Role) []CapabilityUsage {
	tally := map[string]int{}
	for _, role := range all {
		for _, c := range role.Granted() {
			tally[c]++
		}
	}
	out := make([]CapabilityUsage, 0, len(tally))
	for c, n := range tally {
		out = append(out, CapabilityUsage{Capability: c, Roles: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Roles != out[j].Roles {
			return out[i].Roles > out[j].Roles
		}
		return out[i].Capability < out[j].Capability
	})
	return out
}
