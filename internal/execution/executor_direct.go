package execution

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DirectExecutor runs tasks on the caller's goroutine without a bound.
type DirectExecutor struct {
	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool
	log    *zap.Logger
}

var _ Executor = (*DirectExecutor)(nil)

func NewDirectExecutor(params Params) *DirectExecutor {
	return &DirectExecutor{
		log: params.Log.Named("executor_direct"),
	}
}

func (e *DirectExecutor) Start(context.Context) error {
	return nil
}

func (e *DirectExecutor) Execute(ctx context.Context, task Task) error {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrShutdown
	}
	e.wg.Add(1)
	e.mu.RUnlock()

	defer e.wg.Done()

	return task(ctx)
}

// Shutdown rejects new tasks and waits for running ones, or until ctx
// ends.
func (e *DirectExecutor) Shutdown(ctx context.Context) error {
	e.log.Debug("shutting down executor")

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
