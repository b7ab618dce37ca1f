package outbox

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	published []Row
	failFrom  int
}

func (p *stubPublisher) Publish(_ context.Context, row Row) error {
	if p.failFrom > 0 && len(p.published)+1 >= p.failFrom {
		return errors.New("broker unreachable")
	}
	p.published = append(p.published, row)
	return nil
}

func pendingRow(eventType string) Row {
	return Row{
		ID:            uuid.New(),
		AggregateType: "case",
		AggregateID:   uuid.NewString(),
		EventType:     eventType,
		Payload:       []byte(`{}`),
		CreatedAt:     time.Now(),
	}
}

func TestWorkerDrain(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("publishes pending rows and marks them", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Append(ctx, pendingRow("case_created")))
		require.NoError(t, store.Append(ctx, pendingRow("case_submitted")))

		publisher := &stubPublisher{}
		NewWorker(store, publisher, time.Second, 100, logger).drain(ctx)

		assert.Len(t, publisher.published, 2)
		for _, row := range store.All() {
			assert.NotNil(t, row.PublishedAt)
		}
	})

	t.Run("publish failure stops the batch and keeps later rows pending", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Append(ctx, pendingRow("case_created")))
		require.NoError(t, store.Append(ctx, pendingRow("case_submitted")))
		require.NoError(t, store.Append(ctx, pendingRow("case_approved")))

		publisher := &stubPublisher{failFrom: 2}
		worker := NewWorker(store, publisher, time.Second, 100, logger)
		worker.drain(ctx)

		assert.Len(t, publisher.published, 1)
		rows := store.All()
		assert.NotNil(t, rows[0].PublishedAt)
		assert.Nil(t, rows[1].PublishedAt)
		assert.Nil(t, rows[2].PublishedAt)

		// The next cycle picks up where the failure left off.
		publisher.failFrom = 0
		worker.drain(ctx)
		for _, row := range store.All() {
			assert.NotNil(t, row.PublishedAt)
		}
	})

	t.Run("already published rows are not re-sent", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Append(ctx, pendingRow("case_created")))

		publisher := &stubPublisher{}
		worker := NewWorker(store, publisher, time.Second, 100, logger)
		worker.drain(ctx)
		worker.drain(ctx)

		assert.Len(t, publisher.published, 1)
	})

	t.Run("batch size bounds one cycle", func(t *testing.T) {
		store := NewMemory()
		for i := 0; i < 5; i++ {
			require.NoError(t, store.Append(ctx, pendingRow("case_created")))
		}

		publisher := &stubPublisher{}
		NewWorker(store, publisher, time.Second, 2, logger).drain(ctx)
		assert.Len(t, publisher.published, 2)
	})

	t.Run("run exits on context cancellation", func(t *testing.T) {
		worker := NewWorker(NewMemory(), &stubPublisher{}, time.Millisecond, 10, logger)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, worker.Run(ctx), context.Canceled)
	})
}
