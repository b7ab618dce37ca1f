// Package orchestrator fires best-effort calls to downstream collaborators
// after a case is durably created. Tasks run on a bounded worker pool
// detached from the originating request, and every step is fault-isolated:
// one step's failure is logged and never reaches the caller or its sibling
// steps.
package orchestrator

import (
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/domain"
)

// Task describes one case whose existence must be propagated downstream.
type Task struct {
	CaseID     domain.CaseID
	CaseNumber string
	CaseType   domain.CaseType
	PartnerID  domain.PartnerID
	RequestID  string
}
