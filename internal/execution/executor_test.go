package execution_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lambda-feedback/restproxy/internal/execution"
)

func newParams(t *testing.T, cfg execution.Config) execution.Params {
	return execution.Params{
		Context: context.Background(),
		Config:  cfg,
		Log:     zaptest.NewLogger(t),
	}
}

func TestNewExecutor_SelectsImplementation(t *testing.T) {
	direct, err := execution.NewExecutor(newParams(t, execution.Config{}))
	require.NoError(t, err)
	assert.IsType(t, &execution.DirectExecutor{}, direct)

	pooled, err := execution.NewExecutor(newParams(t, execution.Config{MaxInflight: 2}))
	require.NoError(t, err)
	assert.IsType(t, &execution.PooledExecutor{}, pooled)
}

func TestNewPooledExecutor_RequiresSize(t *testing.T) {
	_, err := execution.NewPooledExecutor(newParams(t, execution.Config{}))

	assert.Error(t, err)
}

func TestRun_ReturnsValue(t *testing.T) {
	e := execution.NewDirectExecutor(newParams(t, execution.Config{}))

	out, err := execution.Run(context.Background(), e, func(context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestRun_ReturnsError(t *testing.T) {
	e := execution.NewDirectExecutor(newParams(t, execution.Config{}))

	_, err := execution.Run(context.Background(), e, func(context.Context) (int, error) {
		return 0, assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestPooledExecutor_BoundsConcurrency(t *testing.T) {
	e, err := execution.NewPooledExecutor(newParams(t, execution.Config{MaxInflight: 2}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })

	var (
		current atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.Execute(context.Background(), func(context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Positive(t, peak.Load())
}

func TestPooledExecutor_Saturated(t *testing.T) {
	e, err := execution.NewPooledExecutor(newParams(t, execution.Config{
		MaxInflight:  1,
		QueueTimeout: 20 * time.Millisecond,
	}))
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = e.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	err = e.Execute(context.Background(), func(context.Context) error {
		t.Error("task must not run")
		return nil
	})
	assert.ErrorIs(t, err, execution.ErrSaturated)

	acquired, total := e.Stat()
	assert.Equal(t, int32(1), acquired)
	assert.Equal(t, int32(1), total)

	close(release)
	require.NoError(t, e.Shutdown(context.Background()))
}

func TestPooledExecutor_CanceledContext(t *testing.T) {
	e, err := execution.NewPooledExecutor(newParams(t, execution.Config{MaxInflight: 1}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = e.Execute(ctx, func(context.Context) error { return nil })

	assert.ErrorIs(t, err, execution.ErrSaturated)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPooledExecutor_Shutdown(t *testing.T) {
	e, err := execution.NewPooledExecutor(newParams(t, execution.Config{MaxInflight: 1}))
	require.NoError(t, err)

	require.NoError(t, e.Execute(context.Background(), func(context.Context) error { return nil }))
	require.NoError(t, e.Shutdown(context.Background()))

	err = e.Execute(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, execution.ErrShutdown)
}

func TestDirectExecutor_Shutdown(t *testing.T) {
	e := execution.NewDirectExecutor(newParams(t, execution.Config{}))

	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Shutdown(context.Background()))

	err := e.Execute(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, execution.ErrShutdown)
}

func TestDirectExecutor_ShutdownWaitsForTasks(t *testing.T) {
	e := execution.NewDirectExecutor(newParams(t, execution.Config{}))

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = e.Execute(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, e.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, e.Shutdown(context.Background()))
}
