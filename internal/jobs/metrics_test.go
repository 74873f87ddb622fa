package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("audit:purge").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("audit:purge").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:purge", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:purge", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("audit:purge")))
}

func TestAddPurgedIgnoresEmptyRuns(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddPurged(0)
	m.AddPurged(-3)
	m.AddPurged(12)
	assert.Equal(t, 12.0, testutil.ToFloat64(m.purged))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddPurged(5)
	assert.NoError(t, m.Track("analytics:snapshot").End(nil))
}
