package execution

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jackc/puddle/v2"
	"go.uber.org/zap"
)

// slot is a pooled permit to run one task.
type slot struct {
	id int64
}

// PooledExecutor bounds concurrency with a fixed size pool of slots.
type PooledExecutor struct {
	pool   *puddle.Pool[*slot]
	config Config
	log    *zap.Logger
}

var _ Executor = (*PooledExecutor)(nil)

func NewPooledExecutor(params Params) (*PooledExecutor, error) {
	if params.Config.MaxInflight <= 0 {
		return nil, fmt.Errorf("pooled executor requires max_inflight > 0, got %d", params.Config.MaxInflight)
	}

	pool, err := createPool(params)
	if err != nil {
		return nil, err
	}

	return &PooledExecutor{
		pool:   pool,
		config: params.Config,
		log:    params.Log.Named("executor_pooled"),
	}, nil
}

func (e *PooledExecutor) Start(context.Context) error {
	// slots are created lazily on acquire
	return nil
}

func (e *PooledExecutor) Execute(ctx context.Context, task Task) error {
	resource, err := e.acquire(ctx)
	if err != nil {
		return err
	}
	defer resource.Release()

	return task(ctx)
}

func (e *PooledExecutor) acquire(ctx context.Context) (*puddle.Resource[*slot], error) {
	acquireCtx := ctx
	if e.config.QueueTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, e.config.QueueTimeout)
		defer cancel()
	}

	resource, err := e.pool.Acquire(acquireCtx)
	switch {
	case err == nil:
		return resource, nil
	case errors.Is(err, puddle.ErrClosedPool):
		return nil, ErrShutdown
	case acquireCtx.Err() != nil:
		e.log.Debug("no execution slot available", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSaturated, err)
	default:
		return nil, fmt.Errorf("error acquiring execution slot: %w", err)
	}
}

// Stat returns the number of acquired and total slots.
func (e *PooledExecutor) Stat() (acquired, total int32) {
	stat := e.pool.Stat()
	return stat.AcquiredResources(), stat.TotalResources()
}

// Shutdown closes the pool. Close blocks until all acquired slots
// are released, so it runs in the background to honor ctx.
func (e *PooledExecutor) Shutdown(ctx context.Context) error {
	e.log.Debug("shutting down executor")

	done := make(chan struct{})
	go func() {
		e.pool.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MARK: - Pool

func createPool(params Params) (*puddle.Pool[*slot], error) {
	var nextID atomic.Int64

	constructor := func(context.Context) (*slot, error) {
		return &slot{id: nextID.Add(1)}, nil
	}

	return puddle.NewPool(&puddle.Config[*slot]{
		Constructor: constructor,
		Destructor:  func(*slot) {},
		MaxSize:     int32(params.Config.MaxInflight),
	})
}
