package config

import (
	"github.com/lambda-feedback/restproxy/handler"
	"github.com/lambda-feedback/restproxy/internal/metrics"
	"github.com/lambda-feedback/restproxy/internal/secrets"
	"github.com/lambda-feedback/restproxy/internal/tracing"
	"github.com/lambda-feedback/restproxy/internal/transport"
	"github.com/lambda-feedback/restproxy/util/conf"
)

// EnvPrefix is the prefix of all config env vars, e.g.
// RESTPROXY_UPSTREAM__URL.
const EnvPrefix = "RESTPROXY_"

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Upstream is the upstream the proxy forwards to
	Upstream transport.Config `conf:"upstream"`

	// Credentials configures where the upstream credentials come from
	Credentials secrets.Config `conf:"credentials"`

	// Proxy configures the inbound proxy route
	Proxy handler.Config `conf:"proxy"`

	// Metrics configures the prometheus endpoint
	Metrics metrics.Config `conf:"metrics"`

	// Tracing configures OpenTelemetry tracing
	Tracing tracing.Config `conf:"tracing"`
}

var DefaultConfig = conf.DefaultConfig{
	"log_level":                          "info",
	"log_format":                         "production",
	"upstream.url":                       "http://localhost:8090/api/increment",
	"upstream.timeout":                   "30s",
	"upstream.verify_tls":                true,
	"upstream.breaker.enabled":           false,
	"upstream.breaker.max_requests":      1,
	"upstream.breaker.interval":          "0s",
	"upstream.breaker.timeout":           "30s",
	"upstream.breaker.failure_threshold": 5,
	"credentials.provider":               "static",
	"credentials.vault.mount":            "secret",
	"credentials.vault.username_key":     "username",
	"credentials.vault.password_key":     "password",
	"credentials.vault.timeout":          "10s",
	"proxy.response_mode":                "passthrough",
	"proxy.request_schema":               "",
	"proxy.max_body_bytes":               1 << 20,
	"proxy.max_inflight":                 0,
	"proxy.queue_timeout":                "0s",
	"proxy.rate_limit.rps":               0,
	"proxy.rate_limit.burst":             0,
	"metrics.enabled":                    true,
	"tracing.enabled":                    false,
	"tracing.insecure":                   true,
	"tracing.sample_rate":                1.0,
	"tracing.service_name":               "restproxy",
}
