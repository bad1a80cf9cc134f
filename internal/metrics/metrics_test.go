package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-feedback/restproxy/internal/metrics"
)

func TestRecorder_Dispatched(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())

	rec.Dispatched("POST", "create", 200)
	rec.Dispatched("POST", "create", 200)
	rec.Dispatched("GET", "patch", 500)

	count, err := testutil.GatherAndCount(rec.Registry(), "restproxy_proxy_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecorder_TrackInflight(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())

	done := rec.TrackInflight()

	expected := `
# HELP restproxy_proxy_inflight_requests Number of dispatches currently executing
# TYPE restproxy_proxy_inflight_requests gauge
restproxy_proxy_inflight_requests 1
`
	err := testutil.GatherAndCompare(rec.Registry(), stringsReader(expected), "restproxy_proxy_inflight_requests")
	require.NoError(t, err)

	done()

	expected = `
# HELP restproxy_proxy_inflight_requests Number of dispatches currently executing
# TYPE restproxy_proxy_inflight_requests gauge
restproxy_proxy_inflight_requests 0
`
	err = testutil.GatherAndCompare(rec.Registry(), stringsReader(expected), "restproxy_proxy_inflight_requests")
	require.NoError(t, err)
}

func TestRecorder_Handler(t *testing.T) {
	rec := metrics.NewRecorder(nil)

	rec.TransportFailed("patch", "timeout")
	rec.ObserveUpstream("patch", 20*time.Millisecond)
	rec.Rejected("unsupported_method")

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `restproxy_upstream_errors_total{operation="patch",reason="timeout"} 1`)
	assert.Contains(t, string(body), `restproxy_proxy_rejected_total{reason="unsupported_method"} 1`)
	assert.Contains(t, string(body), "restproxy_upstream_duration_seconds_bucket")
}

func TestRecorder_ObserveUpstream(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())

	rec.ObserveUpstream("create", 2*time.Millisecond)
	rec.ObserveUpstream("create", 300*time.Millisecond)
	rec.ObserveUpstream("delete", time.Second)

	m := findMetric(t, rec.Registry(), "restproxy_upstream_duration_seconds", map[string]string{"operation": "create"})

	hist := m.GetHistogram()
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 0.302, hist.GetSampleSum(), 1e-9)
}

func TestRecorder_DispatchedLabels(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())

	rec.Dispatched("DELETE", "delete", 204)
	rec.Dispatched("DELETE", "delete", 204)

	m := findMetric(t, rec.Registry(), "restproxy_proxy_dispatch_total", map[string]string{
		"method":    "DELETE",
		"operation": "delete",
		"status":    "204",
	})

	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}

func TestRecorder_ObserveSlots(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())

	acquired := int32(1)
	rec.ObserveSlots(func() (int32, int32) { return acquired, 4 })

	m := findMetric(t, rec.Registry(), "restproxy_execution_slots_acquired", nil)
	assert.Equal(t, 1.0, m.GetGauge().GetValue())

	acquired = 3

	m = findMetric(t, rec.Registry(), "restproxy_execution_slots_acquired", nil)
	assert.Equal(t, 3.0, m.GetGauge().GetValue())

	m = findMetric(t, rec.Registry(), "restproxy_execution_slots_total", nil)
	assert.Equal(t, 4.0, m.GetGauge().GetValue())
}
