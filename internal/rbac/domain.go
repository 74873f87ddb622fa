package rbac

import (
	"context"
	"sort"
)

// RoleSource reads role capability state. roles.Service satisfies it.
type RoleSource interface {
	// RoleCapabilities returns the stored capability map of each existing role in ids.
	RoleCapabilities(ctx context.Context, ids []string) (map[string]map[string]bool, error)
	// AllCapabilities returns the catalog: the baseline plus every key stored on any role.
	AllCapabilities(ctx context.Context) ([]string, error)
}

// MembershipReader returns the roles held by a user. users.Service satisfies it.
type MembershipReader interface {
	Roles(ctx context.Context, userID int64) ([]string, error)
}

// Grants is the compact, cacheable form of a user's resolution.
type Grants struct {
	Administrator bool     `json:"administrator"`
	Granted       []string `json:"granted"`
}

// Has reports whether capability is granted. Administrators hold every capability.
func (g Grants) Has(capability string) bool {
	if capability == "" {
		return false
	}
	if g.Administrator {
		return true
	}
	i := sort.SearchStrings(g.Granted, capability)
	return i < len(g.Granted) && g.Granted[i] == capability
}
