package analytichttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/roleguard/internal/analytics"
	"github.com/odyssey-erp/roleguard/internal/rbac"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

type stubService struct {
	snapshot  analytics.Snapshot
	err       error
	latest    *analytics.Snapshot
	lastDays  int
	lastLimit int
}

func (s *stubService) Snapshot(context.Context) (analytics.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubService) Latest(context.Context) (analytics.Snapshot, error) {
	if s.latest == nil {
		return analytics.Snapshot{}, shared.ErrNotFound
	}
	return *s.latest, nil
}

func (s *stubService) Trends(_ context.Context, days int) ([]analytics.TrendBucket, error) {
	s.lastDays = days
	return []analytics.TrendBucket{{Day: "2024-03-14", Action: "user_login", Count: 2}}, nil
}

func (s *stubService) MostActiveActors(_ context.Context, limit int) ([]analytics.ActorActivity, error) {
	s.lastLimit = limit
	return []analytics.ActorActivity{{ActorID: 3, DisplayName: "alice", Entries: 9}}, nil
}

type stubAuthorizer struct{ grants rbac.Grants }

func (s stubAuthorizer) Grants(context.Context, int64) (rbac.Grants, error) {
	return s.grants, nil
}

func newRouter(service *stubService, grants rbac.Grants) http.Handler {
	h := NewHandler(nil, service, rbac.Middleware{Authorizer: stubAuthorizer{grants: grants}})
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: 1, Authenticated: true}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestDashboardCombinesSections(t *testing.T) {
	service := &stubService{snapshot: analytics.Snapshot{RoleCount: 5}}
	rr := get(newRouter(service, rbac.Grants{Administrator: true}), "/analytics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Snapshot analytics.Snapshot        `json:"snapshot"`
		Trends   []analytics.TrendBucket   `json:"trends"`
		Actors   []analytics.ActorActivity `json:"actors"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Snapshot.RoleCount != 5 || len(body.Trends) != 1 || len(body.Actors) != 1 {
		t.Fatalf("unexpected dashboard %+v", body)
	}
	if service.lastDays != dashboardTrendDays || service.lastLimit != dashboardActorsLimit {
		t.Fatalf("unexpected defaults %d/%d", service.lastDays, service.lastLimit)
	}
}

func TestDashboardRequiresManageOptions(t *testing.T) {
	rr := get(newRouter(&stubService{}, rbac.Grants{Granted: []string{"read"}}), "/analytics")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestDashboardServiceFailure(t *testing.T) {
	rr := get(newRouter(&stubService{err: errors.New("db down")}, rbac.Grants{Administrator: true}), "/analytics")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestDashboardFallsBackToPrecomputedSnapshot(t *testing.T) {
	service := &stubService{err: errors.New("db down"), latest: &analytics.Snapshot{RoleCount: 4}}
	rr := get(newRouter(service, rbac.Grants{Administrator: true}), "/analytics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Snapshot analytics.Snapshot `json:"snapshot"`
		Stale    bool               `json:"stale"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Snapshot.RoleCount != 4 || !body.Stale {
		t.Fatalf("expected stale stored snapshot, got %+v", body)
	}
}

func TestTrendsAndActorsParams(t *testing.T) {
	service := &stubService{}
	router := newRouter(service, rbac.Grants{Administrator: true})

	if rr := get(router, "/analytics/trends?days=14"); rr.Code != http.StatusOK || service.lastDays != 14 {
		t.Fatalf("unexpected trends response %d days=%d", rr.Code, service.lastDays)
	}
	if rr := get(router, "/analytics/actors?limit=3"); rr.Code != http.StatusOK || service.lastLimit != 3 {
		t.Fatalf("unexpected actors response %d limit=%d", rr.Code, service.lastLimit)
	}
	if rr := get(router, "/analytics/trends?days=-1"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
