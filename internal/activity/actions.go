package activity

// Audit action keys written to audit_log.action. They are stable identifiers used
// for filtering and analytics grouping; keep them under 50 characters.
const (
	ActionRoleCreation     = "role_creation"
	ActionRoleDeletion     = "role_deletion"
	ActionRoleUpdate       = "role_update"
	ActionRoleRename       = "role_rename"
	ActionCapabilityToggle = "capability_toggle"
	ActionRoleClone        = "role_clone"
	ActionRolesRestore     = "roles_restore"
	ActionRolesImport      = "roles_import"
	ActionPostPublish      = "post_publish"
	ActionPostTrash        = "post_trash"
	ActionPostStatus       = "post_status"
	ActionPostUpdate       = "post_update"
	ActionPostDeletion     = "post_deletion"
	ActionPostMeta         = "post_meta"
	ActionCommentCreation  = "comment_creation"
	ActionCommentUpdate    = "comment_update"
	ActionCommentDeletion  = "comment_deletion"
	ActionCommentSpam      = "comment_spam"
	ActionCommentUnspam    = "comment_unspam"
	ActionCommentTrash     = "comment_trash"
	ActionCommentUntrash   = "comment_untrash"
	ActionUserRegistration = "user_registration"
	ActionProfileUpdate    = "profile_update"
	ActionUserLogin        = "user_login"
	ActionUserLogout       = "user_logout"
	ActionUserDeletion     = "user_deletion"
	ActionUserRoleChange   = "user_role_change"
	ActionUserMeta         = "user_meta"
	ActionPluginActivation = "plugin_activation"
	ActionPluginDeactivate = "plugin_deactivation"
	ActionThemeSwitch      = "theme_switch"
	ActionThemeCustomize   = "theme_customization"
	ActionWordPressUpdate  = "wordpress_update"
	ActionCoreUpdate       = "core_update"
	ActionMediaUpload      = "media_upload"
	ActionMediaUploadDone  = "media_upload_complete"
	ActionMediaProcess     = "media_process"
	ActionMediaUpdate      = "media_update"
	ActionMediaDeletion    = "media_deletion"
	ActionMenuCreation     = "menu_creation"
	ActionMenuUpdate       = "menu_update"
	ActionMenuDeletion     = "menu_deletion"
	ActionWidgetUpdate     = "widget_update"
	ActionTermCreation     = "term_creation"
	ActionTermUpdate       = "term_update"
	ActionTermDeletion     = "term_deletion"
	ActionOptionAddition   = "option_addition"
	ActionOptionUpdate     = "option_update"
	ActionOptionDeletion   = "option_deletion"
)
