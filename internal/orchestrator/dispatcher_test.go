package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu    sync.Mutex
	tasks []Task
	done  chan struct{}
	panic bool
}

func (r *recordingRunner) Run(_ context.Context, task Task) {
	r.mu.Lock()
	r.tasks = append(r.tasks, task)
	shouldPanic := r.panic
	r.panic = false
	r.mu.Unlock()

	if r.done != nil {
		r.done <- struct{}{}
	}
	if shouldPanic {
		panic("collaborator client blew up")
	}
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func newTestDispatcher(runner taskRunner, queueSize int) *Dispatcher {
	d := NewDispatcher(nil, 2, queueSize, time.Second, slog.New(slog.DiscardHandler), nil)
	d.runner = runner
	return d
}

func TestDispatcher(t *testing.T) {
	t.Run("enqueued tasks reach the runner", func(t *testing.T) {
		runner := &recordingRunner{done: make(chan struct{}, 4)}
		d := newTestDispatcher(runner, 8)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = d.Run(ctx) }()

		require.True(t, d.Enqueue(testTask()))
		require.True(t, d.Enqueue(testTask()))

		for i := 0; i < 2; i++ {
			select {
			case <-runner.done:
			case <-time.After(2 * time.Second):
				t.Fatal("task was not processed")
			}
		}
		assert.Equal(t, 2, runner.count())
	})

	t.Run("full queue drops the task without blocking", func(t *testing.T) {
		d := newTestDispatcher(&recordingRunner{}, 1)
		// No workers running: the queue holds one task, the next is dropped.
		assert.True(t, d.Enqueue(testTask()))

		start := time.Now()
		assert.False(t, d.Enqueue(testTask()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("a panicking task does not take down the pool", func(t *testing.T) {
		runner := &recordingRunner{done: make(chan struct{}, 4), panic: true}
		d := newTestDispatcher(runner, 8)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = d.Run(ctx) }()

		require.True(t, d.Enqueue(testTask()))
		require.True(t, d.Enqueue(testTask()))

		for i := 0; i < 2; i++ {
			select {
			case <-runner.done:
			case <-time.After(2 * time.Second):
				t.Fatal("pool died after panic")
			}
		}
		assert.Equal(t, 2, runner.count())
	})

	t.Run("run stops when the lifecycle context ends", func(t *testing.T) {
		d := newTestDispatcher(&recordingRunner{}, 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		errCh := make(chan error, 1)
		go func() { errCh <- d.Run(ctx) }()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("dispatcher did not stop")
		}
	})
}
