package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lambda-feedback/restproxy/internal/execution"
	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/proxy"
	"github.com/lambda-feedback/restproxy/internal/server"
	"github.com/lambda-feedback/restproxy/internal/transport"
)

type staticTransport struct{}

func (staticTransport) Call(context.Context, transport.Call) (*transport.Response, error) {
	return &transport.Response{Content: []byte("42"), Status: http.StatusOK}, nil
}

func TestProxyEndpoint_RateLimited(t *testing.T) {
	log := zaptest.NewLogger(t)
	recorder := metrics.NewRecorder(prometheus.NewRegistry())

	cfg := Config{RateLimit: server.RateLimitConfig{RPS: 1, Burst: 1}}

	h := NewProxyHandler(ProxyHandlerParams{
		Config:    cfg,
		Upstream:  transport.Config{URL: "http://upstream"},
		Transport: staticTransport{},
		Executor:  execution.NewDirectExecutor(execution.Params{Log: log}),
		Recorder:  recorder,
		Log:       log,
	})

	endpoint := newProxyEndpoint(proxyEndpointParams{
		Handler:  h,
		Config:   cfg,
		Recorder: recorder,
		Log:      log,
	})

	mux := server.NewHandler([]*server.HttpHandler{
		NewProxyRoute(endpoint).Handler,
		NewLegacyRoute(endpoint).Handler,
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/proxy", strings.NewReader("41")))
	require.Equal(t, http.StatusOK, rec.Code)

	// the legacy route shares the limiter
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("41")))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	count, err := testutil.GatherAndCount(recorder.Registry(), "restproxy_proxy_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetErrorStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthorized", errUnauthorized, http.StatusUnauthorized},
		{"saturated", execution.ErrSaturated, http.StatusServiceUnavailable},
		{"timeout", &transport.Error{Reason: transport.ReasonTimeout}, http.StatusGatewayTimeout},
		{"tls", &transport.Error{Reason: transport.ReasonTLS}, http.StatusBadGateway},
		{"malformed", &transport.Error{Reason: transport.ReasonMalformedResponse}, http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
		{"unsupported method", &proxy.UnsupportedMethodError{Method: "TRACE"}, http.StatusMethodNotAllowed},
		{"wrapped unsupported method", fmt.Errorf("dispatch: %w", &proxy.UnsupportedMethodError{Method: "TRACE"}), http.StatusMethodNotAllowed},
		{"caller canceled", &transport.Error{Reason: transport.ReasonCanceled, Cause: context.Canceled}, statusClientClosedRequest},
		{"canceled while queued", fmt.Errorf("%w: %w", execution.ErrSaturated, context.Canceled), statusClientClosedRequest},
		{"queue timeout", fmt.Errorf("%w: %w", execution.ErrSaturated, context.DeadlineExceeded), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, getErrorStatusCode(tt.err))
		})
	}
}

func TestRejectReason(t *testing.T) {
	assert.Equal(t, "method", rejectReason(fmt.Errorf("dispatch: %w", &proxy.UnsupportedMethodError{Method: "TRACE"})))
	assert.Equal(t, "saturated", rejectReason(fmt.Errorf("%w: %w", execution.ErrSaturated, context.DeadlineExceeded)))
	assert.Empty(t, rejectReason(fmt.Errorf("%w: %w", execution.ErrSaturated, context.Canceled)))
	assert.Empty(t, rejectReason(&transport.Error{Reason: transport.ReasonCanceled, Cause: context.Canceled}))
}

func TestRegisterSlotMetrics(t *testing.T) {
	log := zaptest.NewLogger(t)

	pooled, err := execution.NewPooledExecutor(execution.Params{
		Context: context.Background(),
		Config:  execution.Config{MaxInflight: 2},
		Log:     log,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pooled.Shutdown(context.Background()) })

	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	registerSlotMetrics(pooled, recorder)

	count, err := testutil.GatherAndCount(recorder.Registry(), "restproxy_execution_slots_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	direct := execution.NewDirectExecutor(execution.Params{Log: log})
	recorder = metrics.NewRecorder(prometheus.NewRegistry())
	registerSlotMetrics(direct, recorder)

	count, err = testutil.GatherAndCount(recorder.Registry(), "restproxy_execution_slots_total")
	require.NoError(t, err)
	assert.Zero(t, count)
}
