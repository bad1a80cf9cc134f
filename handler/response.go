package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/internal/execution"
	"github.com/lambda-feedback/restproxy/internal/proxy"
	"github.com/lambda-feedback/restproxy/internal/schema"
	"github.com/lambda-feedback/restproxy/internal/transport"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errReadBody     = errors.New("failed to read body")
	errBodyTooLarge = errors.New("request body too large")
	errRateLimited  = errors.New("rate limit exceeded")
)

// statusClientClosedRequest is answered when the caller went away
// before the upstream replied. Nobody reads it; it only shows up in
// the access log.
const statusClientClosedRequest = 499

var wellKnownErrors = map[error]int{
	errUnauthorized:               http.StatusUnauthorized,
	errReadBody:                   http.StatusBadRequest,
	errBodyTooLarge:               http.StatusRequestEntityTooLarge,
	errRateLimited:                http.StatusTooManyRequests,
	schema.ErrInvalidJSON:         http.StatusBadRequest,
	execution.ErrSaturated:        http.StatusServiceUnavailable,
	execution.ErrShutdown:         http.StatusServiceUnavailable,
	proxy.ErrAlreadyDispatched:    http.StatusInternalServerError,
	proxy.ErrNotDispatched:        http.StatusInternalServerError,
	transport.ErrInvalidURL:       http.StatusInternalServerError,
	transport.ErrUnknownOperation: http.StatusInternalServerError,
}

// getErrorStatusCode returns the status code for the given error.
func getErrorStatusCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return statusClientClosedRequest
	}

	if proxy.IsUnsupportedMethod(err) {
		return http.StatusMethodNotAllowed
	}

	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity
	}

	if transportErr, ok := transport.AsError(err); ok {
		if transportErr.IsTimeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}

	for known, status := range wellKnownErrors {
		if errors.Is(err, known) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// rejectReason labels an error for the rejected requests metric.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ""
	case proxy.IsUnsupportedMethod(err):
		return "method"
	case errors.Is(err, errUnauthorized):
		return "unauthorized"
	case errors.Is(err, errRateLimited):
		return "rate_limit"
	case errors.Is(err, errBodyTooLarge), errors.Is(err, errReadBody):
		return "body"
	case errors.Is(err, schema.ErrInvalidJSON):
		return "schema"
	case errors.Is(err, execution.ErrSaturated), errors.Is(err, execution.ErrShutdown):
		return "saturated"
	}

	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return "schema"
	}

	return ""
}

type responseError struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

// writeError writes err as a JSON error response. Server errors are
// reported to sentry when a hub is bound to the request.
func writeError(w http.ResponseWriter, r *http.Request, err error, log *zap.Logger) {
	status := getErrorStatusCode(err)

	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", proxy.AllowHeader())
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: responseError{Message: err.Error()}}, log)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *zap.Logger) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}
