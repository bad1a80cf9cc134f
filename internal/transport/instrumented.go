package transport

import (
	"context"
	"time"

	"github.com/lambda-feedback/restproxy/internal/metrics"
)

// InstrumentedTransport records upstream durations and errors.
type InstrumentedTransport struct {
	next     Transport
	recorder *metrics.Recorder
}

var _ Transport = (*InstrumentedTransport)(nil)

// NewInstrumentedTransport wraps next with metrics.
func NewInstrumentedTransport(next Transport, recorder *metrics.Recorder) *InstrumentedTransport {
	return &InstrumentedTransport{
		next:     next,
		recorder: recorder,
	}
}

func (t *InstrumentedTransport) Call(ctx context.Context, call Call) (*Response, error) {
	start := time.Now()

	res, err := t.next.Call(ctx, call)

	t.recorder.ObserveUpstream(call.Operation.String(), time.Since(start))

	if transportErr, ok := AsError(err); ok && !transportErr.IsCanceled() {
		t.recorder.TransportFailed(call.Operation.String(), transportErr.Reason.String())
	}

	return res, err
}
