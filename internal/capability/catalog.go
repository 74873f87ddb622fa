// Package capability holds the catalog of known capability identifiers.
package capability

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/roleguard/internal/i18n"
)

// Group names used for presentation.
const (
	GroupBasic   = "basic"
	GroupPosts   = "posts"
	GroupPages   = "pages"
	GroupThemes  = "themes"
	GroupPlugins = "plugins"
	GroupUsers   = "users"
	GroupCore    = "core"
	GroupOther   = "other"
)

// Group is an ordered, named set of capability identifiers.
type Group struct {
	Name         string
	Capabilities []string
}

// Entry describes one capability for listings.
type Entry struct {
	ID          string `json:"id"`
	Group       string `json:"group"`
	Description string `json:"description"`
}

// Baseline is the fixed set of well-known capabilities. Order matters: an id listed in more
// than one group belongs to the first.
var Baseline = []Group{
	{Name: GroupBasic, Capabilities: []string{"read", "level_0"}},
	{Name: GroupPosts, Capabilities: []string{
		"edit_posts", "edit_others_posts", "edit_published_posts", "publish_posts",
		"delete_posts", "delete_others_posts", "delete_published_posts", "delete_private_posts",
		"read_private_posts", "edit_private_posts",
	}},
	{Name: GroupPages, Capabilities: []string{
		"edit_pages", "edit_others_pages", "edit_published_pages", "publish_pages",
		"delete_pages", "delete_others_pages", "delete_published_pages", "delete_private_pages",
		"read_private_pages", "edit_private_pages",
	}},
	{Name: GroupThemes, Capabilities: []string{
		"switch_themes", "edit_theme_options", "install_themes", "update_themes", "delete_themes",
	}},
	{Name: GroupPlugins, Capabilities: []string{
		"activate_plugins", "install_plugins", "update_plugins", "delete_plugins", "edit_plugins",
	}},
	{Name: GroupUsers, Capabilities: []string{
		"list_users", "create_users", "edit_users", "delete_users", "promote_users",
	}},
	{Name: GroupCore, Capabilities: []string{
		"manage_options", "moderate_comments", "manage_categories", "manage_links", "upload_files",
		"import", "export", "unfiltered_html", "edit_dashboard", "update_core",
		"install_languages", "update_languages",
		"install_plugins", "update_plugins", "install_themes", "update_themes",
	}},
}

var groupIndex = func() map[string]string {
	idx := make(map[string]string)
	for _, g := range Baseline {
		for _, c := range g.Capabilities {
			if _, ok := idx[c]; !ok {
				idx[c] = g.Name
			}
		}
	}
	return idx
}()

// BaselineIDs returns the deduplicated, sorted baseline identifiers.
func BaselineIDs() []string {
	ids := make([]string, 0, len(groupIndex))
	for id := range groupIndex {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListAll returns the sorted union of the baseline and every key present on the given
// capability maps, whether granted or not.
func ListAll(sets ...map[string]bool) []string {
	seen := make(map[string]struct{}, len(groupIndex))
	for id := range groupIndex {
		seen[id] = struct{}{}
	}
	for _, set := range sets {
		for id := range set {
			if id == "" {
				continue
			}
			seen[id] = struct{}{}
		}
	}
	all := make([]string, 0, len(seen))
	for id := range seen {
		all = append(all, id)
	}
	sort.Strings(all)
	return all
}

// GroupOf returns the presentation group of id, "other" when it is not in the baseline.
func GroupOf(id string) string {
	if g, ok := groupIndex[id]; ok {
		return g
	}
	return GroupOther
}

// Grouped buckets ids by group. Ids inside each bucket keep their input order.
func Grouped(ids []string) map[string][]string {
	out := make(map[string][]string)
	for _, id := range ids {
		g := GroupOf(id)
		out[g] = append(out[g], id)
	}
	return out
}

// GroupTitle renders a group name for display ("posts" -> "Posts").
func GroupTitle(name string) string {
	return cases.Title(language.English).String(name)
}

// Catalog describes capabilities in a given locale.
type Catalog struct {
	printer *i18n.Printer
}

// NewCatalog builds a Catalog rendering descriptions with printer.
func NewCatalog(printer *i18n.Printer) *Catalog {
	return &Catalog{printer: printer}
}

// Describe returns the human description of id. Unknown ids get a generic text.
func (c *Catalog) Describe(id string) string {
	var p *i18n.Printer
	if c != nil {
		p = c.printer
	}
	if desc, ok := descriptions[id]; ok {
		return p.Sprintf(desc)
	}
	return p.Sprintf(i18n.MsgNoDescription)
}

// Entries expands ids into described catalog entries.
func (c *Catalog) Entries(ids []string) []Entry {
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Entry{ID: id, Group: GroupOf(id), Description: c.Describe(id)})
	}
	return entries
}

// Contains reports whether id appears in the sorted slice all.
func Contains(all []string, id string) bool {
	i := sort.SearchStrings(all, id)
	return i < len(all) && all[i] == id
}
