package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	// RPS is the sustained number of requests per second. Zero
	// disables rate limiting.
	RPS float64 `conf:"rps"`

	// Burst is the number of requests allowed above RPS at once.
	Burst int `conf:"burst"`
}

// RejectFunc writes the response for a rejected request.
type RejectFunc func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

// RateLimit limits the request rate of next. Rejected requests are
// answered by reject, which defaults to a plain 429.
func RateLimit(cfg RateLimitConfig, log *zap.Logger, reject RejectFunc) Middleware {
	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(cfg.RPS)))
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), burst)

	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := time.Duration(float64(time.Second) / cfg.RPS)

			log.Warn("rate limit exceeded",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			reject(w, r, retryAfter)
		})
	}
}
