package users

import (
	"context"
	"encoding/json"
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

func newTestRouter(repo *stubRepo) http.Handler {
	svc := NewService(repo, &stubPublisher{}, discardLogger())
	mw := rbac.Middleware{Authorizer: staticAuthorizer{
		1: {Administrator: true},
		2: {Granted: []string{"list_users"}},
	}}
	r := chi.NewRouter()
	r.Route("/users", NewHandler(discardLogger(), svc, mw).MountRoutes)
	return r
}

func request(router http.Handler, method, path, body string, actorID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: actorID, Authenticated: true}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandlerGetUser(t *testing.T) {
	router := newTestRouter(newStubRepo(fixtureUsers()...))

	rr := request(router, http.MethodGet, "/users/2", "", 2)
	require.Equal(t, http.StatusOK, rr.Code)
	var user User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
	assert.Equal(t, []string{"editor", "author"}, user.Roles)

	assert.Equal(t, http.StatusBadRequest, request(router, http.MethodGet, "/users/abc", "", 2).Code)
	assert.Equal(t, http.StatusNotFound, request(router, http.MethodGet, "/users/77", "", 2).Code)
}

func TestHandlerMembershipRequiresPromoteUsers(t *testing.T) {
	repo := newStubRepo(fixtureUsers()...)
	router := newTestRouter(repo)

	assert.Equal(t, http.StatusForbidden, request(router, http.MethodPut, "/users/3/role", `{"role":"editor"}`, 2).Code)
	assert.Equal(t, http.StatusNoContent, request(router, http.MethodPut, "/users/3/role", `{"role":"editor"}`, 1).Code)
	assert.Equal(t, []string{"editor"}, repo.users[3].Roles)

	assert.Equal(t, http.StatusNoContent, request(router, http.MethodPost, "/users/3/roles/author", "", 1).Code)
	assert.Equal(t, http.StatusNoContent, request(router, http.MethodDelete, "/users/3/roles/editor", "", 1).Code)
	assert.Equal(t, []string{"author"}, repo.users[3].Roles)
	assert.Equal(t, http.StatusBadRequest, request(router, http.MethodPut, "/users/3/role", `{"role":""}`, 1).Code)
}
