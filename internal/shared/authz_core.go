package shared

// Capabilities guarding the admin surface.
const (
	CapManageOptions = "manage_options"
	CapListUsers     = "list_users"
	CapPromoteUsers  = "promote_users"
	CapEditUsers     = "edit_users"
	CapImport        = "import"
	CapExport        = "export"
	// CapReportActivity lets a host integration account push events it observed,
	// including logins and registrations attributed to other users.
	CapReportActivity = "report_activity"
)

// CoreScopes lists all capabilities used by the admin routes.
func CoreScopes() []string {
	return []string{
		CapManageOptions,
		CapListUsers,
		CapPromoteUsers,
		CapEditUsers,
		CapImport,
		CapExport,
		CapReportActivity,
	}
}

// Role ids with fixed semantics.
const (
	// AdministratorRole always resolves to every capability and can be neither deleted nor renamed.
	AdministratorRole = "administrator"
	// FallbackRole receives the members of a deleted role.
	FallbackRole = "subscriber"
)
