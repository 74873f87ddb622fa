package roles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

const (
	managerID int64 = 1
	editorID  int64 = 2
)

func newTestRouter(t *testing.T, store *memStore) http.Handler {
	t.Helper()
	svc, _, _ := newTestService(store, Config{})
	mw := rbac.Middleware{Authorizer: staticAuthorizer{
		managerID: {Administrator: true},
		editorID:  {Granted: []string{"edit_posts", "read"}},
	}, Logger: discardLogger()}
	h := NewHandler(discardLogger(), svc, mw)
	h.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Route("/roles", h.MountRoutes)
	return r
}

func do(router http.Handler, method, path, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req = req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: userID, Authenticated: true}))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandlerRequiresManageOptions(t *testing.T) {
	router := newTestRouter(t, seededStore())

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/roles/", "", 0).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/roles/", "", editorID).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/roles/", "", managerID).Code)
}

func TestHandlerCreateAndGet(t *testing.T) {
	store := seededStore()
	router := newTestRouter(t, store)

	rr := do(router, http.MethodPost, "/roles/", `{"id":"Shop Manager","display_name":"Shop Manager"}`, managerID)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created Role
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "shop_manager", created.ID)

	rr = do(router, http.MethodGet, "/roles/shop_manager", "", managerID)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusConflict, do(router, http.MethodPost, "/roles/", `{"id":"shop_manager","display_name":"Again"}`, managerID).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/roles/", `{"id":"x"}`, managerID).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/roles/ghost", "", managerID).Code)
}

func TestHandlerMutations(t *testing.T) {
	store := seededStore()
	router := newTestRouter(t, store)

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPut, "/roles/author/capabilities/upload_files", "", managerID).Code)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/roles/author/capabilities/publish_posts", "", managerID).Code)
	author, _ := store.role("author")
	assert.True(t, author.Capabilities["upload_files"])
	assert.False(t, author.Capabilities["publish_posts"])

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPut, "/roles/author/capabilities", `{"capabilities":["read"]}`, managerID).Code)
	author, _ = store.role("author")
	assert.Equal(t, []string{"read"}, author.Granted())

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPatch, "/roles/author", `{"display_name":"Writer"}`, managerID).Code)
	assert.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/roles/author/clone", `{"id":"writer_two","display_name":"Writer Two"}`, managerID).Code)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/roles/writer_two", "", managerID).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodDelete, "/roles/administrator", "", managerID).Code)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPost, "/roles/restore", "", managerID).Code)
	author, _ = store.role("author")
	assert.Equal(t, "Author", author.DisplayName)
}

func TestHandlerExportImport(t *testing.T) {
	store := seededStore()
	router := newTestRouter(t, store)

	rr := do(router, http.MethodGet, "/roles/export", "", managerID)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="roles-export-2024-05-01.json"`, rr.Header().Get("Content-Disposition"))
	var export Export
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&export))
	assert.Contains(t, export, "editor")

	rr = do(router, http.MethodPost, "/roles/import", `{"shop":{"name":"Shop","capabilities":{"read":true}}}`, managerID)
	require.Equal(t, http.StatusOK, rr.Code)
	var result ImportResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, []string{"shop"}, result.Created)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/roles/import", `[]`, managerID).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/roles/export", "", editorID).Code)
}

func TestHandlerExportIsRateLimited(t *testing.T) {
	router := newTestRouter(t, seededStore())
	var last int
	for i := 0; i <= exchangeRateLimit; i++ {
		last = do(router, http.MethodGet, "/roles/export", "", managerID).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

type memGuard struct{ keys map[string]string }

func (g *memGuard) CheckAndInsert(_ context.Context, key, module string) error {
	if _, ok := g.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	g.keys[key] = module
	return nil
}

func (g *memGuard) Delete(_ context.Context, key string) error {
	delete(g.keys, key)
	return nil
}

func TestHandlerImportIdempotencyKey(t *testing.T) {
	store := seededStore()
	svc, _, _ := newTestService(store, Config{})
	mw := rbac.Middleware{Authorizer: staticAuthorizer{managerID: {Administrator: true}}, Logger: discardLogger()}
	guard := &memGuard{keys: map[string]string{}}
	router := chi.NewRouter()
	router.Route("/roles", NewHandler(discardLogger(), svc, mw).WithReplayGuard(guard).MountRoutes)

	post := func(key, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/roles/import", strings.NewReader(body))
		req.Header.Set(IdempotencyHeader, key)
		req = req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: managerID, Authenticated: true}))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	doc := `{"shop":{"name":"Shop","capabilities":{"read":true}}}`
	assert.Equal(t, http.StatusOK, post("k1", doc))
	assert.Equal(t, http.StatusConflict, post("k1", doc))
	assert.Equal(t, "roles.import", guard.keys["k1"])

	// A rejected document releases its key.
	assert.Equal(t, http.StatusBadRequest, post("k2", `[]`))
	assert.NotContains(t, guard.keys, "k2")
	assert.Equal(t, http.StatusOK, post("k2", doc))
}
