// Package transport performs single outbound http calls against the
// upstream and normalizes their results.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/util/requestid"
)

// Call describes one upstream invocation.
type Call struct {
	Operation   Operation
	URL         string
	QueryString string
	Body        []byte
}

// Response is the normalized upstream response.
type Response struct {
	Content []byte
	Header  http.Header
	Status  int
}

// Transport performs exactly one outbound request per Call. It does
// not retry; a failed attempt is returned as *Error.
type Transport interface {
	Call(ctx context.Context, call Call) (*Response, error)
}

// Header is a single header attached to every outbound request.
type Header struct {
	Name  string
	Value string
}

// Options configure the http transport. They are fixed once the
// transport is constructed.
type Options struct {
	// VerifyTLS enables certificate and hostname verification.
	// Disabling it is meant for local upstreams only.
	VerifyTLS bool

	// Headers are attached to every call, in order.
	Headers []Header

	// Timeout bounds a whole call, including reading the body.
	// Zero means no client-side timeout.
	Timeout time.Duration
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client     *http.Client
	headers    []Header
	propagator propagation.TextMapPropagator
	log        *zap.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// HTTPOption is a functional option for the http transport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the http client. The client's own timeout
// and TLS settings take precedence over Options.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// WithLogger sets the logger for the transport.
func WithLogger(log *zap.Logger) HTTPOption {
	return func(t *HTTPTransport) {
		t.log = log
	}
}

// WithPropagator sets the propagator that injects the trace context
// into outbound requests. Defaults to the global propagator.
func WithPropagator(p propagation.TextMapPropagator) HTTPOption {
	return func(t *HTTPTransport) {
		t.propagator = p
	}
}

// NewHTTPTransport creates a new http transport.
func NewHTTPTransport(opts Options, options ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		headers: append([]Header(nil), opts.Headers...),
		log:     zap.NewNop(),
	}

	for _, opt := range options {
		opt(t)
	}

	if t.client == nil {
		t.client = newClient(opts)
	}

	if !opts.VerifyTLS {
		t.log.Warn("upstream tls verification is disabled")
	}

	return t
}

func newClient(opts Options) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if base.TLSClientConfig == nil {
		base.TLSClientConfig = &tls.Config{}
	}
	base.TLSClientConfig.InsecureSkipVerify = !opts.VerifyTLS //nolint:gosec // explicit opt-in

	return &http.Client{
		Transport: base,
		Timeout:   opts.Timeout,
		// redirects are relayed to the caller, not followed
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Call performs the upstream request for the given call.
func (t *HTTPTransport) Call(ctx context.Context, call Call) (*Response, error) {
	verb, ok := call.Operation.Verb()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, call.Operation)
	}

	target, err := buildURL(call.URL, call.QueryString)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if call.Operation.CarriesBody() && len(call.Body) > 0 {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, verb, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	for _, h := range t.headers {
		req.Header.Add(h.Name, h.Value)
	}

	if id, ok := requestid.FromContext(ctx); ok {
		req.Header.Set(requestid.Header, id)
	}

	t.textMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	log := t.log.With(
		zap.Stringer("operation", call.Operation),
		zap.String("verb", verb),
		zap.String("url", target),
	)

	log.Debug("calling upstream")

	res, err := t.client.Do(req)
	if err != nil {
		reason := classify(err)
		log.Debug("upstream call failed", zap.Stringer("reason", reason), zap.Error(err))
		return nil, &Error{Reason: reason, Operation: call.Operation, URL: target, Cause: err}
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		reason := ReasonMalformedResponse
		if classify(err) == ReasonTimeout {
			reason = ReasonTimeout
		}
		log.Debug("failed to read upstream body", zap.Stringer("reason", reason), zap.Error(err))
		return nil, &Error{Reason: reason, Operation: call.Operation, URL: target, Cause: err}
	}

	log.Debug("upstream responded", zap.Int("status", res.StatusCode))

	return &Response{
		Content: content,
		Header:  res.Header.Clone(),
		Status:  res.StatusCode,
	}, nil
}

// buildURL appends the query string to the upstream url, keeping
// any query the upstream url already carries.
func buildURL(rawURL, queryString string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	switch {
	case queryString == "":
	case u.RawQuery == "":
		u.RawQuery = queryString
	default:
		u.RawQuery = u.RawQuery + "&" + queryString
	}

	return u.String(), nil
}

func (t *HTTPTransport) textMapPropagator() propagation.TextMapPropagator {
	if t.propagator != nil {
		return t.propagator
	}
	// resolved per call, tracing may install it after construction
	return otel.GetTextMapPropagator()
}
