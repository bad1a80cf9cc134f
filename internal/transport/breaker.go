package transport

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	// Enabled wraps the transport in a circuit breaker.
	Enabled bool `conf:"enabled"`

	// MaxRequests is the number of calls let through while half-open.
	MaxRequests uint32 `conf:"max_requests"`

	// Interval is the cyclic period in which the closed state clears
	// its counts. Zero never clears them.
	Interval time.Duration `conf:"interval"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `conf:"timeout"`

	// FailureThreshold is the number of consecutive transport errors
	// that trip the breaker.
	FailureThreshold uint32 `conf:"failure_threshold"`
}

// BreakerTransport short-circuits upstream calls after repeated
// transport errors. Upstream http error statuses are not failures.
type BreakerTransport struct {
	next Transport
	cb   *gobreaker.CircuitBreaker
}

var _ Transport = (*BreakerTransport)(nil)

// NewBreakerTransport wraps next in a circuit breaker.
func NewBreakerTransport(name string, next Transport, cfg BreakerConfig, log *zap.Logger) *BreakerTransport {
	if log == nil {
		log = zap.NewNop()
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Info("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// a caller going away says nothing about the upstream
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerTransport{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Call forwards the call unless the breaker is open.
func (t *BreakerTransport) Call(ctx context.Context, call Call) (*Response, error) {
	res, err := t.cb.Execute(func() (interface{}, error) {
		return t.next.Call(ctx, call)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &Error{
			Reason:    ReasonConnection,
			Operation: call.Operation,
			URL:       call.URL,
			Cause:     err,
		}
	}

	if err != nil {
		return nil, err
	}

	return res.(*Response), nil
}

// State returns the current breaker state.
func (t *BreakerTransport) State() gobreaker.State {
	return t.cb.State()
}
