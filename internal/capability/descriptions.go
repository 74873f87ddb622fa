package capability

var descriptions = map[string]string{
	"read":    "Access to read/view content on the site",
	"level_0": "Basic user level",

	"edit_posts":             "Create and edit own posts",
	"edit_others_posts":      "Edit posts created by other users",
	"edit_published_posts":   "Edit already published posts",
	"publish_posts":          "Publish posts",
	"delete_posts":           "Delete own posts",
	"delete_others_posts":    "Delete posts created by other users",
	"delete_published_posts": "Delete published posts",
	"delete_private_posts":   "Delete private posts",
	"read_private_posts":     "Read private posts",
	"edit_private_posts":     "Edit private posts",

	"edit_pages":             "Create and edit own pages",
	"edit_others_pages":      "Edit pages created by other users",
	"edit_published_pages":   "Edit already published pages",
	"publish_pages":          "Publish pages",
	"delete_pages":           "Delete own pages",
	"delete_others_pages":    "Delete pages created by other users",
	"delete_published_pages": "Delete published pages",
	"delete_private_pages":   "Delete private pages",
	"read_private_pages":     "Read private pages",
	"edit_private_pages":     "Edit private pages",

	"switch_themes":      "Switch between different themes",
	"edit_theme_options": "Edit theme options and customize appearance",
	"install_themes":     "Install new themes",
	"update_themes":      "Update existing themes",
	"delete_themes":      "Delete themes",

	"activate_plugins": "Activate and deactivate plugins",
	"install_plugins":  "Install new plugins",
	"update_plugins":   "Update existing plugins",
	"delete_plugins":   "Delete plugins",
	"edit_plugins":     "Edit plugin files",

	"list_users":    "View list of users",
	"create_users":  "Create new users",
	"edit_users":    "Edit existing users",
	"delete_users":  "Delete users",
	"promote_users": "Promote users and change their roles",

	"manage_options":    "Manage site options and settings",
	"moderate_comments": "Moderate and manage comments",
	"manage_categories": "Manage post categories",
	"manage_links":      "Manage navigation links",
	"upload_files":      "Upload files to the media library",
	"import":            "Import content from other sources",
	"export":            "Export site content",
	"unfiltered_html":   "Edit content with unrestricted HTML",
	"edit_dashboard":    "Edit dashboard appearance and widgets",
	"update_core":       "Update WordPress core",
	"install_languages": "Install new language translations",
	"update_languages":  "Update language translations",

	"report_activity": "Report host events to the activity log",
}
