package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Worker drains the outbox: polls for unpublished rows, publishes them, and
// stamps them published. Publish failures leave rows in place for the next
// cycle, so delivery is at-least-once and consumers must be idempotent on
// event ID.
type Worker struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewWorker constructs an outbox drain worker.
func NewWorker(store Store, publisher Publisher, interval time.Duration, batchSize int, logger *slog.Logger) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain publishes one batch. Errors are logged and retried next cycle.
func (w *Worker) drain(ctx context.Context) {
	rows, err := w.store.Unpublished(ctx, w.batchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "outbox poll failed", "error", err)
		return
	}

	var published []uuid.UUID
	for _, row := range rows {
		if err := w.publisher.Publish(ctx, row); err != nil {
			w.logger.WarnContext(ctx, "outbox publish failed",
				"outbox_id", row.ID,
				"event_type", row.EventType,
				"error", err,
			)
			// Keep ordering per aggregate: stop the batch at the first
			// failure instead of skipping ahead.
			break
		}
		published = append(published, row.ID)
	}

	if len(published) == 0 {
		return
	}
	if err := w.store.MarkPublished(ctx, published, time.Now()); err != nil {
		w.logger.ErrorContext(ctx, "outbox mark-published failed",
			"count", len(published),
			"error", err,
		)
	}
}
