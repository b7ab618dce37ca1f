package orchestrator

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/orchestrator/metrics"
)

// taskRunner is implemented by *Runner.
type taskRunner interface {
	Run(ctx context.Context, task Task)
}

// Dispatcher is the bounded task queue that decouples downstream
// orchestration from request handling. Enqueue never blocks the intake
// path; workers consume tasks under the application lifecycle context, so a
// client disconnect cannot cancel work that was already dispatched.
type Dispatcher struct {
	runner      taskRunner
	queue       chan Task
	workers     int
	taskTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewDispatcher builds a dispatcher with the given pool size and queue
// capacity.
func NewDispatcher(runner *Runner, workers, queueSize int, taskTimeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		runner:      runner,
		queue:       make(chan Task, queueSize),
		workers:     workers,
		taskTimeout: taskTimeout,
		logger:      logger,
		metrics:     m,
	}
}

// Enqueue hands a task to the worker pool. Returns false when the queue is
// full; the task is then dropped and counted, and the scheduled full
// projection sync elsewhere picks the case up later.
func (d *Dispatcher) Enqueue(task Task) bool {
	select {
	case d.queue <- task:
		return true
	default:
		d.metrics.IncrementDropped()
		d.logger.Warn("orchestration queue full, dropping task",
			"case_id", task.CaseID.String(),
			"case_number", task.CaseNumber,
		)
		return false
	}
}

// Run consumes tasks until the context is cancelled and the queue is
// drained of accepted work.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case task := <-d.queue:
					d.runTask(ctx, task)
				}
			}
		})
	}
	return g.Wait()
}

// runTask executes one task with its own deadline and panic isolation so a
// misbehaving collaborator client cannot take down the pool.
func (d *Dispatcher) runTask(ctx context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("panic in orchestration task",
				"case_id", task.CaseID.String(),
				"panic", rec,
				"stack", string(debug.Stack()),
			)
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()
	d.runner.Run(taskCtx, task)
}
