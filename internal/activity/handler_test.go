package activity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

type staticAuthorizer map[int64]rbac.Grants

func (s staticAuthorizer) Grants(_ context.Context, userID int64) (rbac.Grants, error) {
	return s[userID], nil
}

// alice (7) is the host integration account; bob (8) holds no grants.
var bob = shared.Actor{ID: 8, DisplayName: "bob", Authenticated: true}

func newIngestRouter(app Appender) http.Handler {
	m := newTestMonitor(app)
	mw := rbac.Middleware{Authorizer: staticAuthorizer{
		alice.ID: {Granted: []string{shared.CapReportActivity}},
	}}
	r := chi.NewRouter()
	r.Route("/activity", NewHandler(m.logger, m, mw).MountRoutes)
	return r
}

func postEvent(router http.Handler, body string, actor shared.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/activity/events", strings.NewReader(body))
	req = req.WithContext(shared.ContextWithActor(req.Context(), actor))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestIngestPublishesEvent(t *testing.T) {
	app := &stubAppender{}
	router := newIngestRouter(app)

	body := `{"kind":"plugin_activated","payload":{"plugin":"akismet/akismet.php","name":"Akismet"}}`
	rr := postEvent(router, body, alice)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, app.entries, 1)
	assert.Equal(t, "User alice activated plugin: Akismet", app.entries[0].description)
	assert.Equal(t, int64(7), app.entries[0].actorID)
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	app := &stubAppender{}
	router := newIngestRouter(app)

	for _, body := range []string{
		`{"kind":"role_deleted","payload":{"role_id":"editor"}}`,
		`{"kind":"nope"}`,
		`not json`,
	} {
		rr := postEvent(router, body, alice)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Empty(t, app.entries)
}

func TestIngestRequiresReportActivity(t *testing.T) {
	app := &stubAppender{}
	router := newIngestRouter(app)
	login := `{"kind":"user_logged_in","payload":{"user_id":1,"display_name":"admin"}}`

	assert.Equal(t, http.StatusUnauthorized, postEvent(router, login, shared.Actor{}).Code)
	assert.Equal(t, http.StatusForbidden, postEvent(router, login, bob).Code)
	assert.Empty(t, app.entries)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/activity/events", strings.NewReader(login)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, app.entries)

	assert.Equal(t, http.StatusAccepted, postEvent(router, login, alice).Code)
	require.Len(t, app.entries, 1)
	assert.Equal(t, appended{1, ActionUserLogin, "User admin logged in"}, app.entries[0])
}
