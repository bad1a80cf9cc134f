// Package execution bounds the number of concurrently running
// upstream dispatches.
package execution

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrSaturated is returned when no execution slot became available
	// before the caller's context or the queue timeout ended.
	ErrSaturated = errors.New("executor saturated")

	// ErrShutdown is returned once the executor has been shut down.
	ErrShutdown = errors.New("executor shut down")
)

// Task is a unit of work run by an executor.
type Task func(context.Context) error

type Executor interface {
	// Execute runs task, waiting for a free slot if necessary.
	Execute(context.Context, Task) error

	// Start prepares the executor.
	Start(context.Context) error

	// Shutdown stops the executor and waits for running tasks to finish.
	Shutdown(context.Context) error
}

type Config struct {
	// MaxInflight is the maximum number of concurrent tasks. Zero
	// means unbounded.
	MaxInflight int `conf:"max_inflight"`

	// QueueTimeout bounds how long a task waits for a slot. Zero
	// waits until the caller's context ends.
	QueueTimeout time.Duration `conf:"queue_timeout"`
}

type Params struct {
	// Context is the context to use for the executor
	Context context.Context

	// Config is the config for the executor
	Config Config

	// Log is the logger to use for the executor
	Log *zap.Logger
}

// NewExecutor returns a pooled executor when MaxInflight is set, and
// a direct executor otherwise.
func NewExecutor(params Params) (Executor, error) {
	if params.Config.MaxInflight > 0 {
		return NewPooledExecutor(params)
	}

	return NewDirectExecutor(params), nil
}

// Run executes fn on e and returns its value.
func Run[O any](ctx context.Context, e Executor, fn func(context.Context) (O, error)) (O, error) {
	var out O

	err := e.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})

	return out, err
}
