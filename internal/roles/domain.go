package roles

import (
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Role ids with fixed semantics.
const (
	AdministratorRole = shared.AdministratorRole
	FallbackRole      = shared.FallbackRole
)

// Role is a named set of capability flags. Only keys mapped to true are granted.
type Role struct {
	ID           string          `json:"id"`
	DisplayName  string          `json:"display_name"`
	Capabilities map[string]bool `json:"capabilities"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Granted returns the sorted ids of granted capabilities.
func (r Role) Granted() []string {
	granted := make([]string, 0, len(r.Capabilities))
	for id, ok := range r.Capabilities {
		if ok {
			granted = append(granted, id)
		}
	}
	sort.Strings(granted)
	return granted
}

// Protected reports whether the role can be neither deleted nor renamed.
func (r Role) Protected() bool {
	return r.ID == AdministratorRole
}

func copyCapabilities(caps map[string]bool) map[string]bool {
	out := make(map[string]bool, len(caps))
	for k, v := range caps {
		out[k] = v
	}
	return out
}

// Definition is a role shipped with the system.
type Definition struct {
	ID           string
	DisplayName  string
	Capabilities []string
}

func (d Definition) role() Role {
	caps := make(map[string]bool, len(d.Capabilities))
	for _, c := range d.Capabilities {
		caps[c] = true
	}
	return Role{ID: d.ID, DisplayName: d.DisplayName, Capabilities: caps, Version: 1}
}

var (
	editorDefinition = Definition{ID: "editor", DisplayName: "Editor", Capabilities: []string{
		"moderate_comments", "manage_categories", "manage_links", "upload_files", "unfiltered_html",
		"edit_posts", "edit_others_posts", "edit_published_posts", "publish_posts", "edit_pages", "read",
		"level_7", "level_6", "level_5", "level_4", "level_3", "level_2", "level_1", "level_0",
		"edit_others_pages", "edit_published_pages", "publish_pages", "delete_pages", "delete_others_pages",
		"delete_published_pages", "delete_posts", "delete_others_posts", "delete_published_posts",
		"delete_private_posts", "read_private_posts", "edit_private_posts", "delete_private_pages",
		"edit_private_pages", "read_private_pages",
	}}
	authorDefinition = Definition{ID: "author", DisplayName: "Author", Capabilities: []string{
		"upload_files", "edit_posts", "edit_published_posts", "publish_posts", "read",
		"level_2", "level_1", "level_0", "delete_posts", "delete_published_posts",
	}}
	contributorDefinition = Definition{ID: "contributor", DisplayName: "Contributor", Capabilities: []string{
		"edit_posts", "read", "level_1", "level_0", "delete_posts",
	}}
	subscriberDefinition = Definition{ID: FallbackRole, DisplayName: "Subscriber", Capabilities: []string{
		"read", "level_0",
	}}
	contentManagerDefinition = Definition{ID: "content_manager", DisplayName: "Content Manager", Capabilities: []string{
		"read", "edit_posts", "edit_published_posts", "publish_posts", "edit_pages",
		"edit_published_pages", "publish_pages", "upload_files", "manage_categories",
	}}
	administratorDefinition = Definition{ID: AdministratorRole, DisplayName: "Administrator"}
)

// CanonicalRoles returns the four default roles recreated by RestoreDefaults.
func CanonicalRoles() []Definition {
	return []Definition{editorDefinition, authorDefinition, contributorDefinition, subscriberDefinition}
}

// InstallRoles returns every role seeded on a fresh install.
func InstallRoles() []Definition {
	return append([]Definition{administratorDefinition}, append(CanonicalRoles(), contentManagerDefinition)...)
}

// NormalizeID turns a candidate into a role slug: lower case, with every run of
// characters outside [a-z0-9_-] collapsed into one underscore.
func NormalizeID(candidate string) string {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	var b strings.Builder
	pending := false
	for _, r := range candidate {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return strings.Trim(b.String(), "_")
}
