package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/vitals/pkg/aggregator"
	"github.com/gatherly/vitals/pkg/alert"
	"github.com/gatherly/vitals/pkg/export"
	"github.com/gatherly/vitals/pkg/notify"
	"github.com/gatherly/vitals/pkg/probe"
	"github.com/gatherly/vitals/pkg/reqmetrics"
	"github.com/gatherly/vitals/pkg/status"
	"github.com/gatherly/vitals/pkg/store"
	"github.com/gatherly/vitals/pkg/sysmetrics"
)

type fakeProber struct {
	name   string
	result probe.Result
}

func (f *fakeProber) Name() string { return f.name }

func (f *fakeProber) Check(ctx context.Context) probe.Result { return f.result }

type fakeSummarizer struct {
	summary store.LogSummary
	err     error
}

func (f *fakeSummarizer) SummarizeRequestLogs(ctx context.Context, since time.Time) (store.LogSummary, error) {
	return f.summary, f.err
}

func newTestServer(t *testing.T, dbStatus, storageStatus status.Status, logs LogSummarizer) *Server {
	t.Helper()

	sys, err := sysmetrics.New(64<<30, "/")
	require.NoError(t, err)

	probes := []probe.Prober{
		&fakeProber{name: "database", result: probe.Result{Status: dbStatus, CheckedAt: time.Now()}},
		&fakeProber{name: "storage", result: probe.Result{Status: storageStatus, CheckedAt: time.Now()}},
	}
	thresholds := alert.DefaultThresholds()
	recorder := reqmetrics.NewRecorder()
	agg := aggregator.New(probes, sys, recorder, nil, thresholds.SelfCheckBounds())

	dispatcher := alert.NewDispatcher(alert.DefaultCooldowns(), []notify.Channel{notify.NewLogChannel()}, alert.NewHistory(), nil)

	return NewServer(agg, thresholds, dispatcher, export.New(), recorder, logs, "test")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Healthy, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var snap aggregator.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, status.Healthy, snap.Status)
	assert.Contains(t, snap.Services, "database")
	assert.Contains(t, snap.Services, "storage")
	assert.Contains(t, snap.Services, "application")
}

func TestHealthEndpointUnhealthyIs503(t *testing.T) {
	srv := newTestServer(t, status.Unhealthy, status.Healthy, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestDetailedHealthIncludesRuntimeAndSummary(t *testing.T) {
	logs := &fakeSummarizer{summary: store.LogSummary{Requests: 1200, Errors: 7}}
	srv := newTestServer(t, status.Healthy, status.Healthy, logs)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Runtime struct {
			GoVersion string `json:"go_version"`
			PID       int    `json:"pid"`
			Version   string `json:"version"`
		} `json:"runtime"`
		LogSummary *store.LogSummary `json:"log_summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Runtime.GoVersion)
	assert.NotZero(t, resp.Runtime.PID)
	assert.Equal(t, "test", resp.Runtime.Version)
	require.NotNil(t, resp.LogSummary)
	assert.Equal(t, int64(1200), resp.LogSummary.Requests)
}

func TestDetailedHealthAbsorbsSummaryFailure(t *testing.T) {
	logs := &fakeSummarizer{err: context.DeadlineExceeded}
	srv := newTestServer(t, status.Healthy, status.Healthy, logs)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		LogSummary *store.LogSummary `json:"log_summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Nil(t, resp.LogSummary)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Degraded, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, export.ContentType, rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "vitals_overall_status 1")
	assert.Contains(t, body, `vitals_service_status{service="storage"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestAlertsEndpointCountsBySeverity(t *testing.T) {
	srv := newTestServer(t, status.Degraded, status.Healthy, nil)

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Alerts []alert.Event          `json:"alerts"`
		Counts map[alert.Severity]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// A degraded database produces a warning status event.
	require.NotEmpty(t, resp.Alerts)
	assert.GreaterOrEqual(t, resp.Counts[alert.SeverityWarning], 1)
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		db       status.Status
		storage  status.Status
		wantCode int
	}{
		{"all healthy", status.Healthy, status.Healthy, http.StatusOK},
		{"storage down does not block", status.Healthy, status.Unhealthy, http.StatusOK},
		{"database down blocks", status.Unhealthy, status.Healthy, http.StatusServiceUnavailable},
		{"degraded database still ready", status.Degraded, status.Healthy, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.db, tt.storage, nil)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestLiveEndpoint(t *testing.T) {
	srv := newTestServer(t, status.Unhealthy, status.Unhealthy, nil)

	// Liveness ignores dependency health entirely.
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp["status"])
	assert.NotZero(t, resp["pid"])
}

func TestSimulateDispatchesThroughRealPath(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Healthy, nil)

	req := httptest.NewRequest(http.MethodPost, "/simulate/high_memory", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Dispatched bool        `json:"dispatched"`
		Alert      alert.Event `json:"alert"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Dispatched)
	assert.Equal(t, alert.SeverityCritical, resp.Alert.Severity)
	assert.Equal(t, alert.MetricMemory, resp.Alert.Metric)
	assert.Equal(t, 95.0, resp.Alert.CurrentValue)
	assert.Equal(t, 85.0, resp.Alert.Threshold)

	// The dispatched alert lands in the shared history.
	records := srv.dispatcher.History().Records()
	require.Len(t, records, 1)
	assert.Equal(t, alert.StatusTriggered, records[0].Status)
	assert.Equal(t, "application:memory", records[0].Key)

	// A second simulation of the same condition is suppressed by cooldown.
	rr2 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr2, httptest.NewRequest(http.MethodPost, "/simulate/high_memory", nil))
	require.Equal(t, http.StatusOK, rr2.Code)
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &resp))
	assert.False(t, resp.Dispatched)
	assert.Equal(t, 1, srv.dispatcher.History().Len())
}

func TestSimulateUnknownCondition(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Healthy, nil)

	req := httptest.NewRequest(http.MethodPost, "/simulate/alien_invasion", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAlertHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Healthy, nil)

	// Seed history through the simulate path.
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/simulate/db_overload", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/alerts/history", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		History []alert.HistoryRecord `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, "database:db_connections", resp.History[0].Key)
}

func TestRequestsFeedRecorder(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Healthy, nil)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/live", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	stats := srv.recorder.Stats()
	assert.Equal(t, uint64(3), stats.TotalRequests)
	assert.Equal(t, uint64(0), stats.TotalErrors)

	averages := srv.recorder.PathAverages()
	assert.Contains(t, averages, "/live")
}

func TestMiddlewareInstrumentsForeignHandlers(t *testing.T) {
	srv := newTestServer(t, status.Healthy, status.Healthy, nil)

	handler := srv.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	stats := srv.recorder.Stats()
	assert.Equal(t, uint64(1), stats.TotalRequests)
	assert.Equal(t, uint64(1), stats.TotalErrors)
	assert.Contains(t, srv.recorder.PathAverages(), "/api/events")
}
