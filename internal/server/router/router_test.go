package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/steelrolls/internal/observability"
	"github.com/mamadbah2/steelrolls/internal/repository/memory"
	"github.com/mamadbah2/steelrolls/internal/server/handlers"
	"github.com/mamadbah2/steelrolls/internal/service/inventory"
	"github.com/mamadbah2/steelrolls/internal/service/reporting"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T, logger *zap.Logger) *gin.Engine {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	inv := inventory.NewService(memory.NewRollRepository(), nil, inventory.WithMetrics(metrics))
	reports := reporting.NewService(inv, memory.NewReportRepository(), reporting.Config{Metrics: metrics}, nil)

	return New(Deps{
		Rolls:    handlers.NewRollsHandler(inv, nil),
		Reports:  handlers.NewReportsHandler(reports, nil),
		Metrics:  metrics,
		Gatherer: reg,
	}, logger)
}

func serve(r http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	r := newTestEngine(t, nil)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/api/rolls", `{"length": 3, "weight": 4}`, http.StatusCreated},
		{http.MethodGet, "/api/rolls", "", http.StatusOK},
		{http.MethodGet, "/api/rolls/1", "", http.StatusOK},
		{http.MethodGet, "/api/rolls/statistics?startDate=2024-01-01&endDate=2024-01-02", "", http.StatusOK},
		{http.MethodGet, "/api/rolls/statistics/daily?startDate=2024-01-01&endDate=2024-01-02", "", http.StatusOK},
		{http.MethodDelete, "/api/rolls/1", "", http.StatusOK},
		{http.MethodGet, "/api/reports", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		w := serve(r, tt.method, tt.path, tt.body, nil)
		assert.Equal(t, tt.want, w.Code, "%s %s: %s", tt.method, tt.path, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestEngine(t, nil)

	serve(r, http.MethodPost, "/api/rolls", `{"length": 3, "weight": 4}`, nil)
	serve(r, http.MethodGet, "/api/rolls/7", "", nil)

	w := serve(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "steelrolls_inventory_rolls_added_total 1")
	assert.Contains(t, body, `steelrolls_http_requests_total{method="GET",route="/api/rolls/:id",status="404"} 1`)
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newTestEngine(t, zap.New(core))

	w := serve(r, http.MethodGet, "/healthz", "", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = serve(r, http.MethodGet, "/healthz", "", nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/healthz", entries[0].ContextMap()["path"])
}
