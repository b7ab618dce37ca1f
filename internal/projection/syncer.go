package projection

import (
	"context"
	"log/slog"
	"time"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/orchestrator/metrics"
)

// syncClient is implemented by *Client; a separate type keeps the syncer
// testable against an httptest-backed client or a stub.
type syncClient interface {
	Sync(ctx context.Context, forceFullSync bool) (SyncResult, error)
}

// Syncer makes a new case visible in the dashboard read model. The write may
// not be visible to the read path immediately, so each run waits a settle
// delay, attempts an incremental resync, and escalates exactly once to a
// full resynchronization when the incremental pass reports zero affected
// rows.
//
// Every failure here is logged and swallowed: a longer-horizon scheduled
// full sync elsewhere in the system is the ultimate backstop, so this
// component guarantees "eventually, via some path" rather than "within this
// run".
type Syncer struct {
	client      syncClient
	settleDelay time.Duration
	timeout     time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewSyncer builds a projection syncer. client may be nil (collaborator not
// configured); runs are then skipped.
func NewSyncer(client *Client, settleDelay, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Syncer {
	s := &Syncer{
		settleDelay: settleDelay,
		timeout:     timeout,
		logger:      logger,
		metrics:     m,
	}
	if client != nil {
		s.client = client
	}
	return s
}

// Run executes one sync pass for a freshly created case. The pass is
// bounded by the syncer's timeout and detached from the caller's
// cancellation: a disconnecting client must not abort resynchronization.
func (s *Syncer) Run(ctx context.Context, caseID string) {
	if s.client == nil {
		s.logger.DebugContext(ctx, "projection sync disabled, no collaborator configured", "case_id", caseID)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	select {
	case <-time.After(s.settleDelay):
	case <-ctx.Done():
		return
	}

	result, err := s.client.Sync(ctx, false)
	if err != nil {
		s.metrics.IncrementProjectionSync("incremental", "failed")
		s.logger.WarnContext(ctx, "incremental projection sync failed",
			"case_id", caseID,
			"error", err,
		)
		return
	}
	s.metrics.IncrementProjectionSync("incremental", "ok")
	s.logger.InfoContext(ctx, "incremental projection sync completed",
		"case_id", caseID,
		"created", result.Created,
		"updated", result.Updated,
	)
	if result.Affected() > 0 {
		return
	}

	// The new case was not picked up yet; escalate to a full rebuild, once.
	full, err := s.client.Sync(ctx, true)
	if err != nil {
		s.metrics.IncrementProjectionSync("full", "failed")
		s.logger.WarnContext(ctx, "full projection sync failed",
			"case_id", caseID,
			"error", err,
		)
		return
	}
	s.metrics.IncrementProjectionSync("full", "ok")
	s.logger.InfoContext(ctx, "full projection sync completed",
		"case_id", caseID,
		"created", full.Created,
		"updated", full.Updated,
	)
}
