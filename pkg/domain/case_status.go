package domain

// CaseStatus tracks a case through its lifecycle. Transitions are monotonic
// along Draft -> Submitted -> UnderReview -> Approved|Rejected; Approved and
// Rejected are terminal.
type CaseStatus string

// Lifecycle states.
const (
	CaseStatusDraft       CaseStatus = "Draft"
	CaseStatusSubmitted   CaseStatus = "Submitted"
	CaseStatusUnderReview CaseStatus = "UnderReview"
	CaseStatusApproved    CaseStatus = "Approved"
	CaseStatusRejected    CaseStatus = "Rejected"
)

// allowedTransitions is the single source of truth for the state machine.
var allowedTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusDraft:       {CaseStatusSubmitted},
	CaseStatusSubmitted:   {CaseStatusUnderReview, CaseStatusApproved, CaseStatusRejected},
	CaseStatusUnderReview: {CaseStatusApproved, CaseStatusRejected},
}

// CanTransitionTo reports whether the state machine permits moving from the
// current status to next.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusApproved || s == CaseStatusRejected
}

// String returns the string representation of the status.
func (s CaseStatus) String() string {
	return string(s)
}
