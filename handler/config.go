package handler

import (
	"github.com/lambda-feedback/restproxy/internal/execution"
	"github.com/lambda-feedback/restproxy/internal/server"
)

// ResponseMode selects how upstream results are written back.
type ResponseMode string

const (
	// ResponseModePassthrough relays the upstream status, headers and
	// body.
	ResponseModePassthrough ResponseMode = "passthrough"

	// ResponseModeEnvelope always answers 200 with the upstream body
	// wrapped as {"incremented": ...}.
	ResponseModeEnvelope ResponseMode = "envelope"
)

type AuthConfig struct {
	// Key is the api key inbound requests must present in the api-key
	// header. Empty disables the check.
	Key string `conf:"key"`
}

type Config struct {
	// ResponseMode selects passthrough or envelope responses.
	ResponseMode ResponseMode `conf:"response_mode"`

	// RequestSchema validates bodies forwarded upstream. Empty
	// disables validation, "increment" selects the built-in schema,
	// anything else is a schema file path.
	RequestSchema string `conf:"request_schema"`

	// MaxBodyBytes limits the inbound body size. Zero is unlimited.
	MaxBodyBytes int64 `conf:"max_body_bytes"`

	// Execution bounds concurrent dispatches.
	Execution execution.Config `conf:",squash"`

	// RateLimit limits the inbound request rate.
	RateLimit server.RateLimitConfig `conf:"rate_limit"`

	// Auth guards the proxy route.
	Auth AuthConfig `conf:"auth"`
}
