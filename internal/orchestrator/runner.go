package orchestrator

import (
	"context"
	"log/slog"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/orchestrator/metrics"
	"github.com/tendai-dev/onboarding-kyb-sub006/internal/projection"
)

// checklistCreator and caseNotifier are implemented by the resty clients;
// interfaces keep the runner testable with stubs.
type checklistCreator interface {
	CreateChecklist(ctx context.Context, task Task) error
}

type caseNotifier interface {
	NotifyCaseCreated(ctx context.Context, task Task) error
}

type projectionSyncer interface {
	Run(ctx context.Context, caseID string)
}

// Runner executes the downstream steps for one task. Steps are independent:
// a failing step is logged with enough context to retry manually and the
// remaining steps still run.
type Runner struct {
	checklist checklistCreator
	notifier  caseNotifier
	syncer    projectionSyncer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewRunner wires the collaborator clients. checklist and notifier may be
// nil pointers; nil means the step is disabled, not failed.
func NewRunner(checklist *ChecklistClient, notifier *NotificationClient, syncer *projection.Syncer, logger *slog.Logger, m *metrics.Metrics) *Runner {
	r := &Runner{logger: logger, metrics: m}
	if checklist != nil {
		r.checklist = checklist
	}
	if notifier != nil {
		r.notifier = notifier
	}
	if syncer != nil {
		r.syncer = syncer
	}
	return r
}

// Run propagates one created case downstream. It never returns an error:
// by the time it runs the caller has already received its response, and no
// downstream failure may change that outcome.
func (r *Runner) Run(ctx context.Context, task Task) {
	if r.checklist == nil {
		r.stepDisabled(ctx, "checklist", task)
	} else {
		r.step(ctx, "checklist", task, func() error {
			return r.checklist.CreateChecklist(ctx, task)
		})
	}

	// Risk assessments are deliberately not created here: an authorized
	// human reviewer opens them later through the review workflow.

	if r.notifier == nil {
		r.stepDisabled(ctx, "notification", task)
	} else {
		r.step(ctx, "notification", task, func() error {
			return r.notifier.NotifyCaseCreated(ctx, task)
		})
	}

	if r.syncer != nil {
		r.syncer.Run(ctx, task.CaseID.String())
	}
}

func (r *Runner) step(ctx context.Context, name string, task Task, fn func() error) {
	if err := fn(); err != nil {
		r.metrics.IncrementStep(name, "failed")
		r.logger.WarnContext(ctx, "downstream step failed",
			"step", name,
			"case_id", task.CaseID.String(),
			"case_number", task.CaseNumber,
			"partner_id", task.PartnerID.String(),
			"request_id", task.RequestID,
			"error", err,
		)
		return
	}
	r.metrics.IncrementStep(name, "ok")
}

func (r *Runner) stepDisabled(ctx context.Context, name string, task Task) {
	r.metrics.IncrementStep(name, "disabled")
	r.logger.DebugContext(ctx, "downstream step disabled, no collaborator configured",
		"step", name,
		"case_id", task.CaseID.String(),
	)
}
