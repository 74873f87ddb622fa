package jobs

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func healthOf(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rr
}

func TestHealthReportsQueueState(t *testing.T) {
	rr := healthOf(t, stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1}})
	require.Equal(t, http.StatusOK, rr.Code)
	var body queueHealth
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Retry: 1}, body)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := healthOf(t, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"archived":0}`, rr.Body.String())
}

func TestHealthInspectorFailure(t *testing.T) {
	rr := healthOf(t, stubInspector{err: errors.New("redis down")})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
