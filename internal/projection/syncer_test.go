package projection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
)

type stubSyncClient struct {
	calls       []bool
	incremental SyncResult
	full        SyncResult
	err         error
	fullErr     error
}

func (c *stubSyncClient) Sync(_ context.Context, forceFullSync bool) (SyncResult, error) {
	c.calls = append(c.calls, forceFullSync)
	if forceFullSync {
		return c.full, c.fullErr
	}
	return c.incremental, c.err
}

func newTestSyncer(client syncClient) *Syncer {
	s := NewSyncer(nil, 0, time.Second, slog.New(slog.DiscardHandler), nil)
	s.client = client
	return s
}

func TestSyncerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("incremental pass that touches rows ends the run", func(t *testing.T) {
		client := &stubSyncClient{incremental: SyncResult{Created: 1}}
		newTestSyncer(client).Run(ctx, "case-1")
		assert.Equal(t, []bool{false}, client.calls)
	})

	t.Run("zero affected rows escalates to exactly one full sync", func(t *testing.T) {
		client := &stubSyncClient{full: SyncResult{Created: 12, Updated: 3}}
		newTestSyncer(client).Run(ctx, "case-1")
		assert.Equal(t, []bool{false, true}, client.calls)
	})

	t.Run("incremental failure is swallowed without escalation", func(t *testing.T) {
		client := &stubSyncClient{err: sentinel.ErrUnavailable}
		newTestSyncer(client).Run(ctx, "case-1")
		assert.Equal(t, []bool{false}, client.calls)
	})

	t.Run("full sync failure is swallowed", func(t *testing.T) {
		client := &stubSyncClient{fullErr: sentinel.ErrUnavailable}
		newTestSyncer(client).Run(ctx, "case-1")
		assert.Equal(t, []bool{false, true}, client.calls)
	})

	t.Run("nil client skips the run entirely", func(t *testing.T) {
		s := NewSyncer(nil, 0, time.Second, slog.New(slog.DiscardHandler), nil)
		s.Run(ctx, "case-1")
	})

	t.Run("run survives caller cancellation", func(t *testing.T) {
		client := &stubSyncClient{incremental: SyncResult{Updated: 1}}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		newTestSyncer(client).Run(cancelled, "case-1")
		assert.Equal(t, []bool{false}, client.calls)
	})
}
