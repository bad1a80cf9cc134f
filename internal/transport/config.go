package transport

import "time"

type Config struct {
	// URL is the fixed upstream endpoint.
	URL string `conf:"url"`

	// Timeout bounds a single upstream call.
	Timeout time.Duration `conf:"timeout"`

	// VerifyTLS enables certificate verification for https upstreams.
	VerifyTLS bool `conf:"verify_tls"`

	// Headers are extra headers sent with every upstream call.
	Headers map[string]string `conf:"headers"`

	// Breaker configures the circuit breaker.
	Breaker BreakerConfig `conf:"breaker"`
}
