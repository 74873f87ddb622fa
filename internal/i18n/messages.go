package i18n

// Message keys. Keys are the English source strings.
const (
	MsgRoleCreated       = "User %[1]s created new role %[2]s"
	MsgRoleDeleted       = "User %[1]s deleted role %[2]s"
	MsgRoleDeletedCaps   = "User %[1]s deleted role %[2]s (capabilities: %[3]s)"
	MsgRoleUpdated       = "User %[1]s updated capabilities for role %[2]s"
	MsgRoleUpdatedDiff   = "User %[1]s updated capabilities for role %[2]s (granted: %[3]s; revoked: %[4]s)"
	MsgRoleRenamed       = "User %[1]s renamed role %[2]s from \"%[3]s\" to \"%[4]s\""
	MsgCapabilityToggled = "User %[1]s %[2]s capability %[3]s for role %[4]s"
	MsgGranted           = "granted"
	MsgRevoked           = "revoked"
	MsgRoleCloned        = "User %[1]s cloned role %[2]s into %[3]s"
	MsgRolesRestored     = "User %[1]s restored the default roles"
	MsgRolesImported     = "User %[1]s imported %[2]d roles"

	MsgPostPublished     = "User %[1]s published a new %[2]s: \"%[3]s\""
	MsgPostTrashed       = "User %[1]s moved %[2]s \"%[3]s\" to trash"
	MsgPostStatusChanged = "User %[1]s changed %[2]s \"%[3]s\" status from \"%[4]s\" to \"%[5]s\""
	MsgPostUpdated       = "User %[1]s updated %[2]s \"%[3]s\""
	MsgPostDeleted       = "User %[1]s permanently deleted %[2]s \"%[3]s\""
	MsgPostMetaAdded     = "User %[1]s added field \"%[2]s\" to %[3]s \"%[4]s\""
	MsgPostMetaUpdated   = "User %[1]s updated field \"%[2]s\" on %[3]s \"%[4]s\""
	MsgPostMetaDeleted   = "User %[1]s removed field \"%[2]s\" from %[3]s \"%[4]s\""

	MsgCommentCreated   = "User %[1]s added a comment on \"%[2]s\""
	MsgCommentEdited    = "User %[1]s edited comment #%[2]d on \"%[3]s\""
	MsgCommentDeleted   = "User %[1]s deleted comment #%[2]d on \"%[3]s\""
	MsgCommentSpammed   = "User %[1]s marked comment #%[2]d on \"%[3]s\" as spam"
	MsgCommentUnspammed = "User %[1]s restored comment #%[2]d on \"%[3]s\" from spam"
	MsgCommentTrashed   = "User %[1]s moved comment #%[2]d on \"%[3]s\" to trash"
	MsgCommentUntrashed = "User %[1]s restored comment #%[2]d on \"%[3]s\" from trash"

	MsgUserRegistered   = "New user %[1]s registered"
	MsgUserCreated      = "User %[1]s created user account %[2]s"
	MsgProfileUpdated   = "User %[1]s updated the profile of %[2]s"
	MsgUserLoggedIn     = "User %[1]s logged in"
	MsgUserLoggedOut    = "User %[1]s logged out"
	MsgUserDeleted      = "User %[1]s deleted user %[2]s"
	MsgUserRoleChanged  = "User %[1]s changed role of %[2]s to \"%[3]s\""
	MsgUserRoleAdded    = "User %[1]s granted role \"%[3]s\" to %[2]s"
	MsgUserRoleRemoved  = "User %[1]s revoked role \"%[3]s\" from %[2]s"
	MsgUserMetaAdded    = "User %[1]s added setting \"%[2]s\" for %[3]s"
	MsgUserMetaUpdated  = "User %[1]s updated setting \"%[2]s\" for %[3]s"
	MsgUserMetaDeleted  = "User %[1]s removed setting \"%[2]s\" for %[3]s"
	MsgPluginActivated  = "User %[1]s activated plugin: %[2]s"
	MsgPluginDeactivate = "User %[1]s deactivated plugin: %[2]s"
	MsgThemeSwitched    = "User %[1]s switched theme from \"%[2]s\" to \"%[3]s\""
	MsgThemeCustomized  = "User %[1]s modified theme customization settings"
	MsgPluginsUpdated   = "User %[1]s updated plugins"
	MsgThemesUpdated    = "User %[1]s updated themes"
	MsgCoreUpdated      = "User %[1]s updated WordPress core to version %[2]s"

	MsgMediaUploaded         = "User %[1]s uploaded a new file: \"%[2]s\" (%[3]s)"
	MsgMediaUploadCompleted  = "User %[1]s completed uploading file: \"%[2]s\" (%[3]s)"
	MsgMediaImageProcessed   = "User %[1]s uploaded image \"%[2]s\" (Dimensions: %[3]dx%[4]dpx)"
	MsgMediaProcessed        = "User %[1]s processed media file \"%[2]s\""
	MsgMediaUpdated          = "User %[1]s updated media file \"%[2]s\""
	MsgMediaDeleted          = "User %[1]s deleted media file \"%[2]s\""
	MsgAttachmentPlaceholder = "attachment #%[1]d"

	MsgMenuCreated    = "User %[1]s created menu \"%[2]s\""
	MsgMenuUpdated    = "User %[1]s updated menu \"%[2]s\""
	MsgMenuDeleted    = "User %[1]s deleted menu \"%[2]s\""
	MsgWidgetsUpdated = "User %[1]s updated widgets"

	MsgTermCreated = "User %[1]s created new %[2]s: \"%[3]s\""
	MsgTermEdited  = "User %[1]s updated %[2]s: \"%[3]s\""
	MsgTermDeleted = "User %[1]s deleted %[2]s: \"%[3]s\""

	MsgOptionAdded   = "User %[1]s added option: %[2]s"
	MsgOptionUpdated = "User %[1]s updated option: %[2]s"
	MsgOptionDeleted = "User %[1]s deleted option: %[2]s"

	MsgNone           = "none"
	MsgNoDescription  = "No description available"
	MsgUnknownSubject = "Unknown"
)

var indonesian = map[string]string{
	MsgRoleCreated:       "Pengguna %[1]s membuat peran baru %[2]s",
	MsgRoleDeleted:       "Pengguna %[1]s menghapus peran %[2]s",
	MsgRoleDeletedCaps:   "Pengguna %[1]s menghapus peran %[2]s (kapabilitas: %[3]s)",
	MsgRoleUpdated:       "Pengguna %[1]s memperbarui kapabilitas peran %[2]s",
	MsgRoleUpdatedDiff:   "Pengguna %[1]s memperbarui kapabilitas peran %[2]s (diberikan: %[3]s; dicabut: %[4]s)",
	MsgRoleRenamed:       "Pengguna %[1]s mengganti nama peran %[2]s dari \"%[3]s\" menjadi \"%[4]s\"",
	MsgCapabilityToggled: "Pengguna %[1]s %[2]s kapabilitas %[3]s untuk peran %[4]s",
	MsgGranted:           "memberikan",
	MsgRevoked:           "mencabut",
	MsgRoleCloned:        "Pengguna %[1]s menyalin peran %[2]s menjadi %[3]s",
	MsgRolesRestored:     "Pengguna %[1]s memulihkan peran bawaan",
	MsgRolesImported:     "Pengguna %[1]s mengimpor %[2]d peran",
	MsgPostPublished:     "Pengguna %[1]s menerbitkan %[2]s baru: \"%[3]s\"",
	MsgPostTrashed:       "Pengguna %[1]s memindahkan %[2]s \"%[3]s\" ke tempat sampah",
	MsgPostUpdated:       "Pengguna %[1]s memperbarui %[2]s \"%[3]s\"",
	MsgPostDeleted:       "Pengguna %[1]s menghapus permanen %[2]s \"%[3]s\"",
	MsgUserLoggedIn:      "Pengguna %[1]s masuk",
	MsgUserLoggedOut:     "Pengguna %[1]s keluar",
	MsgMediaDeleted:      "Pengguna %[1]s menghapus berkas media \"%[2]s\"",
	MsgOptionUpdated:     "Pengguna %[1]s memperbarui opsi: %[2]s",
	MsgNone:              "tidak ada",
	MsgNoDescription:     "Tidak ada deskripsi",
	MsgUnknownSubject:    "Tidak diketahui",
}
