package activity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

type appended struct {
	actorID     int64
	action      string
	description string
}

type stubAppender struct {
	entries []appended
	err     error
}

func (s *stubAppender) Append(_ context.Context, actorID int64, action, description string) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, appended{actorID: actorID, action: action, description: description})
	return nil
}

type stubMedia struct {
	meta  map[int64]map[string]any
	files map[int64]string
	title map[int64]string
	calls int
}

func (s *stubMedia) AttachmentMetadata(_ context.Context, id int64) (map[string]any, error) {
	s.calls++
	return s.meta[id], nil
}

func (s *stubMedia) AttachedFile(_ context.Context, id int64) (string, error) {
	s.calls++
	return s.files[id], nil
}

func (s *stubMedia) Title(_ context.Context, id int64) (string, error) {
	s.calls++
	return s.title[id], nil
}

type countingRecorder struct{ kinds []string }

func (c *countingRecorder) AuditAppendFailed(kind string) { c.kinds = append(c.kinds, kind) }

var alice = shared.Actor{ID: 7, DisplayName: "alice", Authenticated: true}

func newTestMonitor(app Appender, opts ...Option) *Monitor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMonitor(app, i18n.NewPrinter("en"), logger, opts...)
}

func TestMonitorRegistersEveryKind(t *testing.T) {
	m := newTestMonitor(&stubAppender{})
	assert.Len(t, m.Kinds(), 53)
	for kind := range decoders {
		_, ok := m.handlers[kind]
		assert.True(t, ok, "missing handler for %s", kind)
	}
}

func TestRoleEventsRenderDescriptions(t *testing.T) {
	app := &stubAppender{}
	m := newTestMonitor(app)
	ctx := context.Background()

	m.Publish(ctx, alice, RoleCreated{RoleID: "shop_manager", DisplayName: "Shop Manager"})
	m.Publish(ctx, alice, CapabilityToggled{RoleID: "editor", DisplayName: "Editor", Capability: "edit_posts", Granted: false})
	m.Publish(ctx, alice, RoleUpdated{RoleID: "author", DisplayName: "Author", Old: []string{"read", "upload_files"}, New: []string{"read", "edit_posts"}})
	m.Publish(ctx, alice, RoleDeleted{RoleID: "shop_manager", DisplayName: "Shop Manager", Capabilities: []string{"read"}})

	require.Len(t, app.entries, 4)
	assert.Equal(t, appended{7, ActionRoleCreation, "User alice created new role Shop Manager"}, app.entries[0])
	assert.Equal(t, "User alice revoked capability edit_posts for role Editor", app.entries[1].description)
	assert.Equal(t, ActionCapabilityToggle, app.entries[1].action)
	assert.Equal(t, "User alice updated capabilities for role Author (granted: edit_posts; revoked: upload_files)", app.entries[2].description)
	assert.Equal(t, "User alice deleted role Shop Manager (capabilities: read)", app.entries[3].description)
}

func TestPostStatusTransitions(t *testing.T) {
	app := &stubAppender{}
	m := newTestMonitor(app)
	ctx := context.Background()

	m.Publish(ctx, alice, PostStatusChanged{PostID: 1, PostType: "post", Title: "Hello", OldStatus: "draft", NewStatus: "draft"})
	assert.Empty(t, app.entries, "unchanged status is not audited")

	m.Publish(ctx, alice, PostStatusChanged{PostID: 1, PostType: "post", Title: "Hello", OldStatus: "draft", NewStatus: "publish"})
	m.Publish(ctx, alice, PostStatusChanged{PostID: 1, PostType: "post", Title: "Hello", OldStatus: "publish", NewStatus: "trash"})
	m.Publish(ctx, alice, PostStatusChanged{PostID: 1, PostType: "page", Title: "About", OldStatus: "draft", NewStatus: "pending"})

	require.Len(t, app.entries, 3)
	assert.Equal(t, ActionPostPublish, app.entries[0].action)
	assert.Equal(t, `User alice published a new post: "Hello"`, app.entries[0].description)
	assert.Equal(t, ActionPostTrash, app.entries[1].action)
	assert.Equal(t, `User alice changed page "About" status from "draft" to "pending"`, app.entries[2].description)
}

func TestShortCircuitRules(t *testing.T) {
	app := &stubAppender{}
	m := newTestMonitor(app)
	ctx := context.Background()
	snap := PostSnapshot{Title: "A", Content: "body", Status: "publish"}

	m.Publish(ctx, alice, PostUpdated{PostID: 1, PostType: "post", Before: snap, After: snap})
	m.Publish(ctx, alice, PostMetaUpdated{PostMeta{PostID: 1, PostType: "post", Title: "A", Key: "_edit_lock"}})
	m.Publish(ctx, alice, UserMetaUpdated{UserMeta{Subject: Subject{UserID: 2}, Key: "session_tokens"}})
	m.Publish(ctx, alice, OptionUpdated{Name: "_transient_timeout_feed"})
	m.Publish(ctx, alice, OptionAdded{Name: "_site_transient_update_core"})
	m.Publish(ctx, alice, OptionDeleted{Name: "cron"})
	m.Publish(ctx, shared.Actor{}, UserLoggedOut{})
	m.Publish(ctx, alice, UserRoleChanged{Subject: Subject{UserID: 2, DisplayName: "bob"}, Role: "editor", OldRoles: []string{"editor"}})
	m.Publish(ctx, alice, WidgetsUpdated{Old: json.RawMessage(`{"a":1}`), New: json.RawMessage(`{"a":1}`)})
	m.Publish(ctx, alice, PackagesUpdated{Action: "install", Type: "plugin"})

	assert.Empty(t, app.entries)

	changed := snap
	changed.Title = "B"
	m.Publish(ctx, alice, PostUpdated{PostID: 1, PostType: "post", Before: snap, After: changed})
	m.Publish(ctx, alice, OptionUpdated{Name: "blogname", Old: json.RawMessage(`"a"`), New: json.RawMessage(`"b"`)})
	require.Len(t, app.entries, 2)
	assert.Equal(t, `User alice updated post "B"`, app.entries[0].description)
	assert.Equal(t, "User alice updated option: blogname", app.entries[1].description)
}

func TestIgnoredOption(t *testing.T) {
	assert.True(t, IgnoredOption("_transient_doing_cron"))
	assert.True(t, IgnoredOption("cron"))
	assert.True(t, IgnoredOption(""))
	assert.False(t, IgnoredOption("blogname"))
}

func TestUserEventsUseSubjectAsActor(t *testing.T) {
	app := &stubAppender{}
	m := newTestMonitor(app)
	ctx := context.Background()

	m.Publish(ctx, shared.Actor{}, UserLoggedIn{Subject{UserID: 3, DisplayName: "carol"}})
	m.Publish(ctx, shared.Actor{}, UserRegistered{Subject{UserID: 4, DisplayName: "dave"}})
	m.Publish(ctx, alice, UserRegistered{Subject{UserID: 5, DisplayName: "erin"}})

	require.Len(t, app.entries, 3)
	assert.Equal(t, appended{3, ActionUserLogin, "User carol logged in"}, app.entries[0])
	assert.Equal(t, appended{4, ActionUserRegistration, "New user dave registered"}, app.entries[1])
	assert.Equal(t, appended{7, ActionUserRegistration, "User alice created user account erin"}, app.entries[2])
}

func TestUserRoleMembershipEvents(t *testing.T) {
	app := &stubAppender{}
	m := newTestMonitor(app)
	ctx := context.Background()

	m.Publish(ctx, alice, UserRoleAdded{Subject: Subject{UserID: 3, DisplayName: "carol"}, Role: "administrator"})
	m.Publish(ctx, alice, UserRoleRemoved{Subject: Subject{UserID: 3, DisplayName: "carol"}, Role: "administrator"})
	m.Publish(ctx, alice, UserRoleAdded{Subject: Subject{UserID: 3}})

	require.Len(t, app.entries, 2)
	assert.Equal(t, appended{7, ActionUserRoleChange, `User alice granted role "administrator" to carol`}, app.entries[0])
	assert.Equal(t, appended{7, ActionUserRoleChange, `User alice revoked role "administrator" from carol`}, app.entries[1])
}

func TestMediaDeletingResolvesNameBeforeRemoval(t *testing.T) {
	app := &stubAppender{}
	media := &stubMedia{meta: map[int64]map[string]any{42: {"file": "2024/05/photo.jpg"}}}
	m := newTestMonitor(app, WithMediaSource(media))

	m.Publish(context.Background(), alice, MediaDeleting{AttachmentID: 42})
	// the host destroys the attachment only after Publish returned
	delete(media.meta, 42)

	require.Len(t, app.entries, 1)
	assert.Equal(t, ActionMediaDeletion, app.entries[0].action)
	assert.Equal(t, `User alice deleted media file "photo.jpg"`, app.entries[0].description)
}

func TestMediaFileNameFallbackChain(t *testing.T) {
	media := &stubMedia{
		files: map[int64]string{2: "/uploads/2024/doc.pdf"},
		title: map[int64]string{3: "Team photo"},
	}
	m := newTestMonitor(&stubAppender{}, WithMediaSource(media))
	ctx := context.Background()

	assert.Equal(t, "doc.pdf", m.fileName(ctx, 2, ""))
	assert.Equal(t, "Team photo", m.fileName(ctx, 3, ""))
	assert.Equal(t, "attachment #4", m.fileName(ctx, 4, ""))
	assert.Equal(t, "given.png", m.fileName(ctx, 5, "dir/given.png"))

	withoutSource := newTestMonitor(&stubAppender{})
	assert.Equal(t, "attachment #9", withoutSource.fileName(ctx, 9, ""))
	assert.Equal(t, "given.png", withoutSource.fileName(ctx, 9, "given.png"))
}

func TestMediaStoredNameBeatsEventName(t *testing.T) {
	media := &stubMedia{
		meta:  map[int64]map[string]any{1: {"file": "2024/05/original.jpg"}},
		files: map[int64]string{1: "/uploads/2024/05/scaled.jpg", 2: "/uploads/2024/doc.pdf"},
		title: map[int64]string{3: "Team photo"},
	}
	m := newTestMonitor(&stubAppender{}, WithMediaSource(media))
	ctx := context.Background()

	assert.Equal(t, "original.jpg", m.fileName(ctx, 1, "upload-tmp.jpg"))
	assert.Equal(t, "doc.pdf", m.fileName(ctx, 2, "upload-tmp.pdf"))
	assert.Equal(t, "Team photo", m.fileName(ctx, 3, "upload-tmp.png"))
}

func TestMediaMetadataGenerated(t *testing.T) {
	app := &stubAppender{}
	m := newTestMonitor(app)
	ctx := context.Background()

	m.Publish(ctx, alice, MediaMetadataGenerated{AttachmentID: 1})
	m.Publish(ctx, alice, MediaMetadataGenerated{AttachmentID: 1, Metadata: map[string]any{"file": "a/b.png", "width": float64(640), "height": float64(480)}})
	m.Publish(ctx, alice, MediaUploaded{AttachmentID: 2, FileName: "report.pdf"})

	require.Len(t, app.entries, 2)
	assert.Equal(t, `User alice uploaded image "b.png" (Dimensions: 640x480px)`, app.entries[0].description)
	assert.Equal(t, `User alice uploaded a new file: "report.pdf" (PDF)`, app.entries[1].description)
}

func TestPublishSwallowsAppendFailures(t *testing.T) {
	app := &stubAppender{err: errors.New("db down")}
	rec := &countingRecorder{}
	m := newTestMonitor(app, WithFailureRecorder(rec))

	assert.NotPanics(t, func() {
		m.Publish(context.Background(), alice, ThemeCustomized{})
	})
	assert.Equal(t, []string{string(KindThemeCustomized)}, rec.kinds)
}

func TestPublishLocalizedDescription(t *testing.T) {
	app := &stubAppender{}
	m := NewMonitor(app, i18n.NewPrinter("id-ID"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	m.Publish(context.Background(), shared.Actor{}, UserLoggedIn{Subject{UserID: 3, DisplayName: "carol"}})

	require.Len(t, app.entries, 1)
	assert.Equal(t, "Pengguna carol masuk", app.entries[0].description)
}

func TestDecode(t *testing.T) {
	ev, err := Decode(KindMediaDeleting, json.RawMessage(`{"attachment_id": 42}`))
	require.NoError(t, err)
	assert.Equal(t, MediaDeleting{AttachmentID: 42}, ev)

	ev, err = Decode(KindThemeCustomized, nil)
	require.NoError(t, err)
	assert.Equal(t, ThemeCustomized{}, ev)

	_, err = Decode(KindRoleCreated, json.RawMessage(`{"role_id":"x"}`))
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = Decode(KindOptionAdded, json.RawMessage(`{"name":"x","extra":true}`))
	assert.ErrorIs(t, err, shared.ErrValidation)
}
