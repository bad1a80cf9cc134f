package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/internal/execution"
	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/proxy"
	"github.com/lambda-feedback/restproxy/internal/schema"
	"github.com/lambda-feedback/restproxy/internal/transport"
	"github.com/lambda-feedback/restproxy/util/logging"
	"github.com/lambda-feedback/restproxy/util/requestid"
)

// hopHeaders are connection scoped and never relayed.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Length",
}

type ProxyHandlerParams struct {
	fx.In

	Config    Config
	Upstream  transport.Config
	Transport transport.Transport
	Executor  execution.Executor
	Validator *schema.Validator `optional:"true"`
	Recorder  *metrics.Recorder
	Log       *zap.Logger
}

// ProxyHandler forwards inbound requests to the upstream, one
// dispatcher per request.
type ProxyHandler struct {
	config      Config
	upstreamURL string
	transport   transport.Transport
	executor    execution.Executor
	validator   *schema.Validator
	recorder    *metrics.Recorder
	log         *zap.Logger
}

func NewProxyHandler(params ProxyHandlerParams) *ProxyHandler {
	mode := params.Config.ResponseMode
	if mode == "" {
		mode = ResponseModePassthrough
	}
	params.Config.ResponseMode = mode

	return &ProxyHandler{
		config:      params.Config,
		upstreamURL: params.Upstream.URL,
		transport:   params.Transport,
		executor:    params.Executor,
		validator:   params.Validator,
		recorder:    params.Recorder,
		log:         params.Log,
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if h.config.Auth.Key != "" && r.Header.Get("api-key") != h.config.Auth.Key {
		h.reject(w, r, errUnauthorized, log)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.reject(w, r, err, log)
		return
	}

	request := proxy.NewInboundRequest(r, body)

	if err := h.validate(request); err != nil {
		h.reject(w, r, err, log)
		return
	}

	log.Info("value to increment", zap.ByteString("value", body))

	dispatcher := proxy.NewDispatcher(request, h.transport, proxy.WithLogger(log))

	result, err := execution.Run(r.Context(), h.executor, func(ctx context.Context) (proxy.Result, error) {
		defer h.recorder.TrackInflight()()
		if err := dispatcher.Dispatch(ctx, h.upstreamURL); err != nil {
			return proxy.Result{}, err
		}
		return dispatcher.Result()
	})
	if err != nil {
		h.reject(w, r, err, log)
		return
	}

	op, _ := proxy.DefaultActions.Resolve(request.Method)
	h.recorder.Dispatched(request.Method.String(), op.String(), result.Status)

	log.Info("incremented value",
		zap.ByteString("value", result.Content),
		zap.Int("upstream_status", result.Status),
	)

	switch h.config.ResponseMode {
	case ResponseModeEnvelope:
		h.writeEnvelope(w, result, log)
	default:
		h.writePassthrough(w, result, log)
	}
}

func (h *ProxyHandler) requestLogger(r *http.Request) *zap.Logger {
	if log, err := logging.LoggerFromContext(r.Context()); err == nil {
		return log
	}

	return h.log.With(
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

func (h *ProxyHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	reader := r.Body
	if h.config.MaxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, maxBytesErr.Limit)
		}
		return nil, fmt.Errorf("%w: %w", errReadBody, err)
	}

	return body, nil
}

// validate checks the body against the schema when it will be
// forwarded upstream.
func (h *ProxyHandler) validate(request proxy.InboundRequest) error {
	op, err := proxy.DefaultActions.Resolve(request.Method)
	if err != nil || !op.CarriesBody() {
		return nil
	}

	return h.validator.Validate(request.Body)
}

func (h *ProxyHandler) reject(w http.ResponseWriter, r *http.Request, err error, log *zap.Logger) {
	if reason := rejectReason(err); reason != "" {
		h.recorder.Rejected(reason)
	}

	writeError(w, r, err, log)
}

func (h *ProxyHandler) writePassthrough(w http.ResponseWriter, result proxy.Result, log *zap.Logger) {
	header := w.Header()
	for name, values := range result.Header {
		// the inbound request id set by the middleware wins
		if name == requestid.Header {
			continue
		}
		header[name] = append([]string(nil), values...)
	}
	for _, name := range hopHeaders {
		header.Del(name)
	}

	w.WriteHeader(result.Status)

	if _, err := w.Write(result.Content); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}

type envelope struct {
	Incremented json.RawMessage `json:"incremented"`
}

func (h *ProxyHandler) writeEnvelope(w http.ResponseWriter, result proxy.Result, log *zap.Logger) {
	content := result.Content
	if !json.Valid(content) {
		// non JSON upstream bodies are embedded as a string
		content, _ = json.Marshal(string(content))
	}

	writeJSON(w, http.StatusOK, envelope{Incremented: content}, log)
}
