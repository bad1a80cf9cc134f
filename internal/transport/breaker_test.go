package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lambda-feedback/restproxy/internal/transport"
)

type stubTransport struct {
	calls int
	res   *transport.Response
	err   error
}

func (s *stubTransport) Call(context.Context, transport.Call) (*transport.Response, error) {
	s.calls++
	return s.res, s.err
}

func TestBreakerTransport_OpensAfterThreshold(t *testing.T) {
	stub := &stubTransport{err: &transport.Error{Reason: transport.ReasonConnection}}

	tr := transport.NewBreakerTransport("test", stub, transport.BreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		Timeout:          time.Minute,
	}, zaptest.NewLogger(t))

	call := transport.Call{Operation: transport.OperationPatch, URL: "http://upstream"}

	for i := 0; i < 2; i++ {
		_, err := tr.Call(context.Background(), call)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, tr.State())

	_, err := tr.Call(context.Background(), call)

	transportErr, ok := transport.AsError(err)
	require.True(t, ok)
	assert.Equal(t, transport.ReasonConnection, transportErr.Reason)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, stub.calls)
}

func TestBreakerTransport_UpstreamStatusIsSuccess(t *testing.T) {
	stub := &stubTransport{res: &transport.Response{Status: 500}}

	tr := transport.NewBreakerTransport("test", stub, transport.BreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
	}, nil)

	for i := 0; i < 3; i++ {
		res, err := tr.Call(context.Background(), transport.Call{Operation: transport.OperationCreate})
		require.NoError(t, err)
		assert.Equal(t, 500, res.Status)
	}

	assert.Equal(t, gobreaker.StateClosed, tr.State())
	assert.Equal(t, 3, stub.calls)
}

func TestBreakerTransport_IgnoresCanceledCallers(t *testing.T) {
	stub := &stubTransport{err: &transport.Error{Reason: transport.ReasonConnection, Cause: context.Canceled}}

	tr := transport.NewBreakerTransport("test", stub, transport.BreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
	}, nil)

	_, err := tr.Call(context.Background(), transport.Call{Operation: transport.OperationPatch})
	require.True(t, errors.Is(err, context.Canceled))

	assert.Equal(t, gobreaker.StateClosed, tr.State())
}
