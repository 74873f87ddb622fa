// Package activity translates host lifecycle signals and role-store domain events into
// audit log entries.
package activity

import "encoding/json"

// Kind identifies an event variant.
type Kind string

// Event is implemented by every typed payload accepted by the Monitor.
type Event interface {
	Kind() Kind
}

// Role domain events, emitted by the role store only.
const (
	KindRoleCreated       Kind = "role_created"
	KindRoleDeleted       Kind = "role_deleted"
	KindRoleUpdated       Kind = "role_updated"
	KindRoleRenamed       Kind = "role_renamed"
	KindCapabilityToggled Kind = "capability_toggled"
	KindRoleCloned        Kind = "role_cloned"
	KindRolesRestored     Kind = "roles_restored"
	KindRolesImported     Kind = "roles_imported"
)

// Host lifecycle events.
const (
	KindPostStatusChanged Kind = "post_status_changed"
	KindPostUpdated       Kind = "post_updated"
	KindPostDeleted       Kind = "post_deleted"
	KindPostMetaAdded     Kind = "post_meta_added"
	KindPostMetaUpdated   Kind = "post_meta_updated"
	KindPostMetaDeleted   Kind = "post_meta_deleted"

	KindCommentCreated   Kind = "comment_created"
	KindCommentEdited    Kind = "comment_edited"
	KindCommentDeleted   Kind = "comment_deleted"
	KindCommentSpammed   Kind = "comment_spammed"
	KindCommentUnspammed Kind = "comment_unspammed"
	KindCommentTrashed   Kind = "comment_trashed"
	KindCommentUntrashed Kind = "comment_untrashed"

	KindUserRegistered  Kind = "user_registered"
	KindProfileUpdated  Kind = "profile_updated"
	KindUserLoggedIn    Kind = "user_logged_in"
	KindUserLoggedOut   Kind = "user_logged_out"
	KindUserDeleted     Kind = "user_deleted"
	KindUserRoleChanged Kind = "user_role_changed"
	KindUserRoleAdded   Kind = "user_role_added"
	KindUserRoleRemoved Kind = "user_role_removed"
	KindUserMetaAdded   Kind = "user_meta_added"
	KindUserMetaUpdated Kind = "user_meta_updated"
	KindUserMetaDeleted Kind = "user_meta_deleted"

	KindPluginActivated   Kind = "plugin_activated"
	KindPluginDeactivated Kind = "plugin_deactivated"
	KindThemeSwitched     Kind = "theme_switched"
	KindThemeCustomized   Kind = "theme_customized"
	KindPackagesUpdated   Kind = "packages_updated"
	KindCoreUpdated       Kind = "core_updated"

	KindMediaUploaded          Kind = "media_uploaded"
	KindMediaUploadCompleted   Kind = "media_upload_completed"
	KindMediaMetadataGenerated Kind = "media_metadata_generated"
	KindMediaUpdated           Kind = "media_updated"
	KindMediaDeleting          Kind = "media_deleting"

	KindMenuCreated    Kind = "menu_created"
	KindMenuUpdated    Kind = "menu_updated"
	KindMenuDeleted    Kind = "menu_deleted"
	KindWidgetsUpdated Kind = "widgets_updated"

	KindTermCreated Kind = "term_created"
	KindTermEdited  Kind = "term_edited"
	KindTermDeleted Kind = "term_deleted"

	KindOptionAdded   Kind = "option_added"
	KindOptionUpdated Kind = "option_updated"
	KindOptionDeleted Kind = "option_deleted"
)

// RoleCreated is emitted after a role was inserted.
type RoleCreated struct {
	RoleID       string   `json:"role_id"`
	DisplayName  string   `json:"display_name"`
	Capabilities []string `json:"capabilities"`
}

// RoleDeleted carries the former granted set so the narrative survives the role.
type RoleDeleted struct {
	RoleID       string   `json:"role_id"`
	DisplayName  string   `json:"display_name"`
	Capabilities []string `json:"capabilities"`
	Reassigned   int      `json:"reassigned"`
}

// RoleUpdated is emitted after a full capability replace.
type RoleUpdated struct {
	RoleID      string   `json:"role_id"`
	DisplayName string   `json:"display_name"`
	Old         []string `json:"old"`
	New         []string `json:"new"`
}

// RoleRenamed is emitted when a display name changes.
type RoleRenamed struct {
	RoleID  string `json:"role_id"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// CapabilityToggled is emitted after a single grant or revoke.
type CapabilityToggled struct {
	RoleID      string `json:"role_id"`
	DisplayName string `json:"display_name"`
	Capability  string `json:"capability"`
	Granted     bool   `json:"granted"`
}

// RoleCloned is emitted after a role was copied.
type RoleCloned struct {
	SourceID string `json:"source_id"`
	RoleID   string `json:"role_id"`
}

// RolesRestored is emitted after the canonical roles were recreated.
type RolesRestored struct {
	Removed []string `json:"removed"`
}

// RolesImported is emitted after an import merged role data.
type RolesImported struct {
	RoleIDs []string `json:"role_ids"`
}

// PostStatusChanged mirrors a content status transition.
type PostStatusChanged struct {
	PostID    int64  `json:"post_id"`
	PostType  string `json:"post_type"`
	Title     string `json:"title"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// PostSnapshot holds the visible fields compared by PostUpdated.
type PostSnapshot struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
	Status  string `json:"status"`
}

// PostUpdated carries the before and after state of an edit.
type PostUpdated struct {
	PostID   int64        `json:"post_id"`
	PostType string       `json:"post_type"`
	Before   PostSnapshot `json:"before"`
	After    PostSnapshot `json:"after"`
}

// PostDeleted is a permanent content deletion.
type PostDeleted struct {
	PostID   int64  `json:"post_id"`
	PostType string `json:"post_type"`
	Title    string `json:"title"`
}

// PostMeta is the shared payload of the post meta events.
type PostMeta struct {
	PostID   int64  `json:"post_id"`
	PostType string `json:"post_type"`
	Title    string `json:"title"`
	Key      string `json:"key"`
}

// PostMetaAdded is emitted when a custom field is added.
type PostMetaAdded struct{ PostMeta }

// PostMetaUpdated is emitted when a custom field changes.
type PostMetaUpdated struct{ PostMeta }

// PostMetaDeleted is emitted when a custom field is removed.
type PostMetaDeleted struct{ PostMeta }

// Comment is the shared payload of the comment lifecycle events.
type Comment struct {
	CommentID int64  `json:"comment_id"`
	PostTitle string `json:"post_title"`
}

// CommentCreated is emitted for a new comment.
type CommentCreated struct{ Comment }

// CommentEdited is emitted after a comment edit.
type CommentEdited struct{ Comment }

// CommentDeleted is emitted after a permanent comment deletion.
type CommentDeleted struct{ Comment }

// CommentSpammed is emitted when a comment is marked as spam.
type CommentSpammed struct{ Comment }

// CommentUnspammed is emitted when a comment leaves spam.
type CommentUnspammed struct{ Comment }

// CommentTrashed is emitted when a comment is trashed.
type CommentTrashed struct{ Comment }

// CommentUntrashed is emitted when a comment is restored from trash.
type CommentUntrashed struct{ Comment }

// Subject identifies the user an event is about.
type Subject struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// UserRegistered is emitted for a new account, self-registered or admin-created.
type UserRegistered struct{ Subject }

// ProfileUpdated is emitted after a profile save.
type ProfileUpdated struct{ Subject }

// UserLoggedIn is emitted after a successful login. The subject is the acting user.
type UserLoggedIn struct{ Subject }

// UserLoggedOut is emitted on logout of the current actor.
type UserLoggedOut struct{}

// UserDeleted is emitted before an account is removed.
type UserDeleted struct{ Subject }

// UserRoleChanged is emitted when a user's primary role is set.
type UserRoleChanged struct {
	Subject
	Role     string   `json:"role"`
	OldRoles []string `json:"old_roles"`
}

// UserRoleAdded is emitted when a role is granted next to the existing ones.
type UserRoleAdded struct {
	Subject
	Role string `json:"role"`
}

// UserRoleRemoved is emitted when one of a user's roles is revoked.
type UserRoleRemoved struct {
	Subject
	Role string `json:"role"`
}

// UserMeta is the shared payload of the user meta events.
type UserMeta struct {
	Subject
	Key string `json:"key"`
}

// UserMetaAdded is emitted when a user setting is added.
type UserMetaAdded struct{ UserMeta }

// UserMetaUpdated is emitted when a user setting changes.
type UserMetaUpdated struct{ UserMeta }

// UserMetaDeleted is emitted when a user setting is removed.
type UserMetaDeleted struct{ UserMeta }

// Plugin identifies a plugin by path and display name.
type Plugin struct {
	Plugin string `json:"plugin"`
	Name   string `json:"name"`
}

// PluginActivated is emitted after activation.
type PluginActivated struct{ Plugin }

// PluginDeactivated is emitted after deactivation.
type PluginDeactivated struct{ Plugin }

// ThemeSwitched is emitted when the active theme changes.
type ThemeSwitched struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// ThemeCustomized is emitted after the customizer saved.
type ThemeCustomized struct{}

// PackagesUpdated mirrors the upgrader completion signal.
type PackagesUpdated struct {
	Action string `json:"action"`
	Type   string `json:"type"`
}

// CoreUpdated is emitted after a successful core update.
type CoreUpdated struct {
	Version string `json:"version"`
}

// MediaUploaded is emitted when an attachment object is created.
type MediaUploaded struct {
	AttachmentID int64  `json:"attachment_id"`
	FileName     string `json:"file_name,omitempty"`
}

// MediaUploadCompleted is emitted once the uploaded file is stored.
type MediaUploadCompleted struct {
	File string `json:"file"`
	Type string `json:"type"`
}

// MediaMetadataGenerated is emitted after attachment metadata was generated.
type MediaMetadataGenerated struct {
	AttachmentID int64          `json:"attachment_id"`
	Metadata     map[string]any `json:"metadata"`
}

// MediaUpdated is emitted after an attachment edit.
type MediaUpdated struct {
	AttachmentID int64 `json:"attachment_id"`
}

// MediaDeleting must be published while the attachment and its metadata still exist.
// The handler resolves the display file name synchronously before Publish returns.
type MediaDeleting struct {
	AttachmentID int64  `json:"attachment_id"`
	FileName     string `json:"file_name,omitempty"`
}

// Menu identifies a navigation menu.
type Menu struct {
	MenuID int64  `json:"menu_id"`
	Name   string `json:"name"`
}

// MenuCreated is emitted for a new menu.
type MenuCreated struct{ Menu }

// MenuUpdated is emitted after a menu save.
type MenuUpdated struct{ Menu }

// MenuDeleted is emitted after a menu removal.
type MenuDeleted struct{ Menu }

// WidgetsUpdated carries the old and new sidebar layout.
type WidgetsUpdated struct {
	Old json.RawMessage `json:"old"`
	New json.RawMessage `json:"new"`
}

// Term identifies a taxonomy term.
type Term struct {
	TermID   int64  `json:"term_id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
}

// TermCreated is emitted for a new term.
type TermCreated struct{ Term }

// TermEdited is emitted after a term edit.
type TermEdited struct{ Term }

// TermDeleted is emitted after a term deletion.
type TermDeleted struct{ Term }

// OptionAdded is emitted when a setting is created.
type OptionAdded struct {
	Name string `json:"name"`
}

// OptionUpdated is emitted when a setting changes.
type OptionUpdated struct {
	Name string          `json:"name"`
	Old  json.RawMessage `json:"old,omitempty"`
	New  json.RawMessage `json:"new,omitempty"`
}

// OptionDeleted is emitted when a setting is removed.
type OptionDeleted struct {
	Name string `json:"name"`
}

func (RoleCreated) Kind() Kind       { return KindRoleCreated }
func (RoleDeleted) Kind() Kind       { return KindRoleDeleted }
func (RoleUpdated) Kind() Kind       { return KindRoleUpdated }
func (RoleRenamed) Kind() Kind       { return KindRoleRenamed }
func (CapabilityToggled) Kind() Kind { return KindCapabilityToggled }
func (RoleCloned) Kind() Kind        { return KindRoleCloned }
func (RolesRestored) Kind() Kind     { return KindRolesRestored }
func (RolesImported) Kind() Kind     { return KindRolesImported }

func (PostStatusChanged) Kind() Kind { return KindPostStatusChanged }
func (PostUpdated) Kind() Kind       { return KindPostUpdated }
func (PostDeleted) Kind() Kind       { return KindPostDeleted }
func (PostMetaAdded) Kind() Kind     { return KindPostMetaAdded }
func (PostMetaUpdated) Kind() Kind   { return KindPostMetaUpdated }
func (PostMetaDeleted) Kind() Kind   { return KindPostMetaDeleted }

func (CommentCreated) Kind() Kind   { return KindCommentCreated }
func (CommentEdited) Kind() Kind    { return KindCommentEdited }
func (CommentDeleted) Kind() Kind   { return KindCommentDeleted }
func (CommentSpammed) Kind() Kind   { return KindCommentSpammed }
func (CommentUnspammed) Kind() Kind { return KindCommentUnspammed }
func (CommentTrashed) Kind() Kind   { return KindCommentTrashed }
func (CommentUntrashed) Kind() Kind { return KindCommentUntrashed }

func (UserRegistered) Kind() Kind  { return KindUserRegistered }
func (ProfileUpdated) Kind() Kind  { return KindProfileUpdated }
func (UserLoggedIn) Kind() Kind    { return KindUserLoggedIn }
func (UserLoggedOut) Kind() Kind   { return KindUserLoggedOut }
func (UserDeleted) Kind() Kind     { return KindUserDeleted }
func (UserRoleChanged) Kind() Kind { return KindUserRoleChanged }
func (UserRoleAdded) Kind() Kind   { return KindUserRoleAdded }
func (UserRoleRemoved) Kind() Kind { return KindUserRoleRemoved }
func (UserMetaAdded) Kind() Kind   { return KindUserMetaAdded }
func (UserMetaUpdated) Kind() Kind { return KindUserMetaUpdated }
func (UserMetaDeleted) Kind() Kind { return KindUserMetaDeleted }

func (PluginActivated) Kind() Kind   { return KindPluginActivated }
func (PluginDeactivated) Kind() Kind { return KindPluginDeactivated }
func (ThemeSwitched) Kind() Kind     { return KindThemeSwitched }
func (ThemeCustomized) Kind() Kind   { return KindThemeCustomized }
func (PackagesUpdated) Kind() Kind   { return KindPackagesUpdated }
func (CoreUpdated) Kind() Kind       { return KindCoreUpdated }

func (MediaUploaded) Kind() Kind          { return KindMediaUploaded }
func (MediaUploadCompleted) Kind() Kind   { return KindMediaUploadCompleted }
func (MediaMetadataGenerated) Kind() Kind { return KindMediaMetadataGenerated }
func (MediaUpdated) Kind() Kind           { return KindMediaUpdated }
func (MediaDeleting) Kind() Kind          { return KindMediaDeleting }

func (MenuCreated) Kind() Kind    { return KindMenuCreated }
func (MenuUpdated) Kind() Kind    { return KindMenuUpdated }
func (MenuDeleted) Kind() Kind    { return KindMenuDeleted }
func (WidgetsUpdated) Kind() Kind { return KindWidgetsUpdated }

func (TermCreated) Kind() Kind { return KindTermCreated }
func (TermEdited) Kind() Kind  { return KindTermEdited }
func (TermDeleted) Kind() Kind { return KindTermDeleted }

func (OptionAdded) Kind() Kind   { return KindOptionAdded }
func (OptionUpdated) Kind() Kind { return KindOptionUpdated }
func (OptionDeleted) Kind() Kind { return KindOptionDeleted }
