package activity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

type decoder func(payload json.RawMessage) (Event, error)

// decoders covers host lifecycle events only. Role domain events originate in the
// role store and cannot be injected from outside.
var decoders = map[Kind]decoder{
	KindPostStatusChanged: decodeAs[PostStatusChanged],
	KindPostUpdated:       decodeAs[PostUpdated],
	KindPostDeleted:       decodeAs[PostDeleted],
	KindPostMetaAdded:     decodeAs[PostMetaAdded],
	KindPostMetaUpdated:   decodeAs[PostMetaUpdated],
	KindPostMetaDeleted:   decodeAs[PostMetaDeleted],

	KindCommentCreated:   decodeAs[CommentCreated],
	KindCommentEdited:    decodeAs[CommentEdited],
	KindCommentDeleted:   decodeAs[CommentDeleted],
	KindCommentSpammed:   decodeAs[CommentSpammed],
	KindCommentUnspammed: decodeAs[CommentUnspammed],
	KindCommentTrashed:   decodeAs[CommentTrashed],
	KindCommentUntrashed: decodeAs[CommentUntrashed],

	KindUserRegistered:  decodeAs[UserRegistered],
	KindProfileUpdated:  decodeAs[ProfileUpdated],
	KindUserLoggedIn:    decodeAs[UserLoggedIn],
	KindUserLoggedOut:   decodeAs[UserLoggedOut],
	KindUserDeleted:     decodeAs[UserDeleted],
	KindUserRoleChanged: decodeAs[UserRoleChanged],
	KindUserRoleAdded:   decodeAs[UserRoleAdded],
	KindUserRoleRemoved: decodeAs[UserRoleRemoved],
	KindUserMetaAdded:   decodeAs[UserMetaAdded],
	KindUserMetaUpdated: decodeAs[UserMetaUpdated],
	KindUserMetaDeleted: decodeAs[UserMetaDeleted],

	KindPluginActivated:   decodeAs[PluginActivated],
	KindPluginDeactivated: decodeAs[PluginDeactivated],
	KindThemeSwitched:     decodeAs[ThemeSwitched],
	KindThemeCustomized:   decodeAs[ThemeCustomized],
	KindPackagesUpdated:   decodeAs[PackagesUpdated],
	KindCoreUpdated:       decodeAs[CoreUpdated],

	KindMediaUploaded:          decodeAs[MediaUploaded],
	KindMediaUploadCompleted:   decodeAs[MediaUploadCompleted],
	KindMediaMetadataGenerated: decodeAs[MediaMetadataGenerated],
	KindMediaUpdated:           decodeAs[MediaUpdated],
	KindMediaDeleting:          decodeAs[MediaDeleting],

	KindMenuCreated:    decodeAs[MenuCreated],
	KindMenuUpdated:    decodeAs[MenuUpdated],
	KindMenuDeleted:    decodeAs[MenuDeleted],
	KindWidgetsUpdated: decodeAs[WidgetsUpdated],

	KindTermCreated: decodeAs[TermCreated],
	KindTermEdited:  decodeAs[TermEdited],
	KindTermDeleted: decodeAs[TermDeleted],

	KindOptionAdded:   decodeAs[OptionAdded],
	KindOptionUpdated: decodeAs[OptionUpdated],
	KindOptionDeleted: decodeAs[OptionDeleted],
}

// Decode builds a typed host event from its wire form.
func Decode(kind Kind, payload json.RawMessage) (Event, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, shared.NewValidationError("kind", fmt.Sprintf("unsupported event kind %q", kind))
	}
	return dec(payload)
}

func decodeAs[T Event](payload json.RawMessage) (Event, error) {
	var ev T
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return ev, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return nil, shared.NewValidationError("payload", err.Error())
	}
	return ev, nil
}
