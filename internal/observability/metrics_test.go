package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(reg), reg
}

func TestMetrics_Inventory(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RollAdded()
	m.RollAdded()
	m.RollDeleted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rollsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollsDeleted))
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.ObserveRequest("GET", "/api/rolls/:id", 404, 3*time.Millisecond)
	m.ObserveRequest("GET", "/api/rolls/:id", 404, time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/rolls/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	count, err := testutil.GatherAndCount(reg, "steelrolls_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_Outcomes(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.ReportDelivered("sheets", nil)
	m.ReportDelivered("sheets", errors.New("quota"))
	m.MaintenanceRun(nil)
	m.ObserveStatistics("daily", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsGenerated.WithLabelValues("sheets", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsGenerated.WithLabelValues("sheets", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeMaintenance.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.statsDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RollAdded()
		m.RollDeleted()
		m.ObserveStatistics("statistics", time.Second)
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.ReportDelivered("store", nil)
		m.MaintenanceRun(nil)
	})
}
