// Package proxy forwards one inbound request to the upstream and
// holds the upstream result.
package proxy

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/internal/transport"
)

// Result is the stored upstream response.
type Result struct {
	Content []byte
	Header  http.Header
	Status  int
}

type state int

const (
	stateCreated state = iota
	stateDispatched
)

// Dispatcher forwards a single InboundRequest. It is spent after the
// first call to Dispatch and is not safe for concurrent use.
type Dispatcher struct {
	request   InboundRequest
	transport transport.Transport
	actions   ActionTable
	log       *zap.Logger

	state  state
	result *Result
}

// Option is a functional option for the dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for the dispatcher.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithActions replaces the default action table.
func WithActions(actions ActionTable) Option {
	return func(d *Dispatcher) {
		d.actions = actions
	}
}

// NewDispatcher creates a dispatcher for request.
func NewDispatcher(request InboundRequest, t transport.Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		request:   request,
		transport: t,
		actions:   DefaultActions,
		log:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch forwards the request to upstreamURL. Unsupported verbs fail
// with *UnsupportedMethodError before the transport is touched, and
// transport failures are returned unchanged. The result is stored only
// once the upstream call completed.
func (d *Dispatcher) Dispatch(ctx context.Context, upstreamURL string) error {
	if d.state == stateDispatched {
		return ErrAlreadyDispatched
	}
	d.state = stateDispatched

	op, err := d.actions.Resolve(d.request.Method)
	if err != nil {
		d.log.Debug("rejecting unsupported method", zap.Stringer("method", d.request.Method))
		return err
	}

	call := transport.Call{
		Operation:   op,
		URL:         upstreamURL,
		QueryString: d.request.QueryString,
	}
	if op.CarriesBody() {
		call.Body = d.request.Body
	}

	log := d.log.With(
		zap.Stringer("method", d.request.Method),
		zap.Stringer("operation", op),
	)

	res, err := d.transport.Call(ctx, call)
	if err != nil {
		log.Debug("dispatch failed", zap.Error(err))
		return err
	}

	d.result = &Result{
		Content: res.Content,
		Header:  res.Header,
		Status:  res.Status,
	}

	log.Debug("dispatched", zap.Int("status", res.Status))

	return nil
}

// Content returns the upstream body, or nil before dispatch.
func (d *Dispatcher) Content() []byte {
	if d.result == nil {
		return nil
	}
	return d.result.Content
}

// Headers returns the upstream headers, or nil before dispatch.
func (d *Dispatcher) Headers() http.Header {
	if d.result == nil {
		return nil
	}
	return d.result.Header
}

// Status returns the upstream status code, or 0 before dispatch.
func (d *Dispatcher) Status() int {
	if d.result == nil {
		return 0
	}
	return d.result.Status
}

// Result returns the stored result.
func (d *Dispatcher) Result() (Result, error) {
	if d.result == nil {
		return Result{}, ErrNotDispatched
	}
	return *d.result, nil
}
